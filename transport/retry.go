package transport

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	// DefaultRetryLimit is the number of additional attempts after the first failure.
	DefaultRetryLimit = 3
	// DefaultBaseDelay is multiplied by 2^attempt to produce the backoff delay.
	DefaultBaseDelay = time.Second
	// MaxRetryLimit bounds RetryPolicy.Limit and the backoff exponent.
	MaxRetryLimit = 10
)

// RetryPolicy configures the transient-failure retry loop.
type RetryPolicy struct {
	Limit     int
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns 3 retries with delays of 2s, 4s and 8s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Limit: DefaultRetryLimit, BaseDelay: DefaultBaseDelay}
}

// RetryState is the per-request retry bookkeeping. It is a value: each attempt derives
// the next state instead of mutating shared fields.
type RetryState struct {
	Attempt int
}

// Next returns the state for the following retry.
func (s RetryState) Next() RetryState {
	return RetryState{Attempt: s.Attempt + 1}
}

// CanRetry reports whether another retry fits in the policy budget.
func (p RetryPolicy) CanRetry(s RetryState) bool {
	return s.Attempt < p.Limit
}

// Delay returns the wait before retry number attempt (1-based): BaseDelay × 2^attempt.
// The exponent is clamped to [0, MaxRetryLimit].
func (p RetryPolicy) Delay(attempt int) time.Duration {
	attempt = min(max(attempt, 0), MaxRetryLimit)
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryable reports whether an attempt outcome is eligible for retry: network failures
// and 5xx responses are, everything else is final. Failures caused by the caller's own
// context ending are never retried.
func retryable(ctx context.Context, status int, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	return status >= http.StatusInternalServerError
}
