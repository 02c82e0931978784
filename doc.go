// Package techhatch is the client SDK for the TechHatch job board.
//
// A [Client] owns the authentication lifecycle (OTP-based two-step login and
// registration, session restore, logout), the resilient HTTP gateway every REST call
// goes through, and the job, application and profile services. Clients are built
// with [Builder] and are safe for concurrent use.
//
// # Architecture boundaries
//
// techhatch is the public surface. Token decoding lives in jwt, the gateway in
// transport, persisted credentials in session and navigation gating in guard. Flow
// orchestration and cooldown bookkeeping live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Verify token signatures. The backend is the sole authority on credentials.
//   - Log tokens, passwords or OTP codes.
//   - Import any sub-package that re-imports techhatch (no import cycles).
package techhatch
