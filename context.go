package techhatch

import (
	"context"

	"github.com/MrEthical07/techhatch/transport"
)

// WithRequestID pins the X-Request-ID of every call made with ctx. Retries of one
// call always share one id; without a pinned id each call gets a fresh UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return transport.WithRequestID(ctx, id)
}
