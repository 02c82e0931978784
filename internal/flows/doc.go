// Package flows contains the orchestrators behind every Client auth operation.
//
// Each Run function takes a typed dependency struct and performs one step of the
// two-step login or registration flow: local validation, the backend call, cooldown
// bookkeeping, session persistence, metrics and audit. Machine tracks which step the
// caller is in; it holds no I/O dependencies.
//
// # What this package must NOT do
//
//   - Import the techhatch root package (no import cycles).
//   - Perform I/O except through the dependency interfaces.
package flows
