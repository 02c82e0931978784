package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "thc:"

// Redis is a Timer whose state lives in Redis keys with a PX expiry.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis timer. An empty prefix uses "thc:".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	return &Redis{redis: client, prefix: prefix}
}

func (r *Redis) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.redis.PTTL(ctx, r.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	// -2 (missing) and -1 (no expiry) both mean no running cooldown.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *Redis) Start(ctx context.Context, key string, d time.Duration) error {
	if d <= 0 {
		return r.Reset(ctx, key)
	}
	if err := r.redis.Set(ctx, r.prefix+key, 1, d).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
