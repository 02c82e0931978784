package cooldown

import "errors"

// ErrRedisUnavailable wraps Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")
