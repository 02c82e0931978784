// Package apitest is an in-memory job-board backend for tests and demos. It speaks
// the same REST surface as the real service, mints HS256 credentials, and can
// inject failures and record every request it receives.
package apitest
