package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "th:credential"

// RedisCredentials stores the credential under one Redis string key. The key expires
// together with the credential's own expiry claim.
type RedisCredentials struct {
	redis redis.UniversalClient
	key   string
}

// NewRedisCredentials returns a store on client under key.
func NewRedisCredentials(client redis.UniversalClient, key string) *RedisCredentials {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisCredentials{redis: client, key: key}
}

func (r *RedisCredentials) Load(ctx context.Context) (string, error) {
	token, err := r.redis.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	return token, nil
}

func (r *RedisCredentials) Save(ctx context.Context, token string) error {
	var ttl time.Duration
	if exp, ok := jwt.ExpiresAt(token); ok {
		ttl = time.Until(exp)
		if ttl <= 0 {
			return r.Delete(ctx)
		}
	}
	if err := r.redis.Set(ctx, r.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	return nil
}

func (r *RedisCredentials) Delete(ctx context.Context) error {
	if err := r.redis.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	return nil
}
