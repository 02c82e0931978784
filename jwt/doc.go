// Package jwt decodes bearer credentials issued by the job-board backend and mints
// compatible tokens for local fakes.
//
// Decoding never verifies signatures. The backend is the only party that enforces
// signature validity and expiry; the client reads claims to derive identity and to skip
// requests that would certainly be rejected.
package jwt
