// Package transport is the single outbound gateway for job-board REST calls.
//
// Every request passes a request interceptor (credential attach or local expiry abort)
// and a response interceptor (401 teardown, bounded exponential-backoff retry of network
// failures and 5xx responses, immediate propagation of other 4xx responses).
//
// Retry bookkeeping is a RetryState value owned by the goroutine running the request, so
// concurrent requests retry independently and each request's attempts are strictly
// sequential.
package transport
