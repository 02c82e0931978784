// Package cli is the techhatch command line: sign in with an emailed one-time
// code, browse and apply to jobs, and run an in-memory backend for local use.
package cli
