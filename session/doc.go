// Package session holds the client-side record of the authenticated identity.
//
// Only the opaque credential string is persisted. Identity fields (user id, email,
// role) are always derived by decoding that credential, and the decode is memoized per
// token value, so the in-memory Session can never disagree with the token it came from.
//
// # Persistence backends
//
//   - [MemoryCredentials]: process-local, for tests and short-lived tools.
//   - [FileCredentials]: a 0600 JSON file that survives restarts.
//   - [RedisCredentials]: one Redis string key shared by several processes.
package session
