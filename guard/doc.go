// Package guard decides whether a navigation may proceed given the current session.
//
// # Components
//
//   - [Table]: the route table, with [DefaultRoutes] mirroring the job board.
//   - [Decide]: the pure decision over one route, one session and the restore flag.
//   - [Navigator]: applies decisions to a [History] and performs the idempotent
//     redirect-to-login that follows a session teardown.
//   - [Middleware] and [Fiber]: HTTP adapters for net/http and gofiber.
//
// # What this package must NOT do
//
//   - Verify token signatures. The session is client-side convenience only.
//   - Perform network I/O.
package guard
