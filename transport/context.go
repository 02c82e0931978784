package transport

import "context"

type requestIDContextKey struct{}

// WithRequestID pins the X-Request-ID used for the next logical request made with ctx.
// Without it every logical request gets a fresh random ID, reused across its retries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the id pinned with WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
