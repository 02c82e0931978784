package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCredentials(t *testing.T) (*RedisCredentials, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return NewRedisCredentials(rdb, "th:test:credential"), mr, rdb
}

func TestRedisCredentialsRoundTrip(t *testing.T) {
	ctx := context.Background()
	creds, mr, _ := newRedisCredentials(t)
	token := mintToken(t, "r@example.com", jwt.RoleCandidate, "4", time.Hour)

	if got, err := creds.Load(ctx); err != nil || got != "" {
		t.Fatalf("expected empty load, got %q, %v", got, err)
	}
	if err := creds.Save(ctx, token); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got, err := creds.Load(ctx); err != nil || got != token {
		t.Fatalf("Load = %q, %v", got, err)
	}

	ttl := mr.TTL("th:test:credential")
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected key ttl bounded by token expiry, got %v", ttl)
	}

	if err := creds.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if mr.Exists("th:test:credential") {
		t.Fatal("expected key deletion")
	}
}

func TestRedisCredentialsKeyExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	creds, mr, _ := newRedisCredentials(t)

	if err := creds.Save(ctx, mintToken(t, "r@example.com", jwt.RoleCandidate, "4", time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if got, err := creds.Load(ctx); err != nil || got != "" {
		t.Fatalf("expected expired key to be gone, got %q, %v", got, err)
	}
}

func TestRedisCredentialsSaveExpiredTokenDeletes(t *testing.T) {
	ctx := context.Background()
	creds, mr, _ := newRedisCredentials(t)
	mr.Set("th:test:credential", "old")

	if err := creds.Save(ctx, mintToken(t, "r@example.com", jwt.RoleCandidate, "4", -time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if mr.Exists("th:test:credential") {
		t.Fatal("expired token must not be stored")
	}
}

func TestRedisCredentialsUnavailable(t *testing.T) {
	ctx := context.Background()
	creds, mr, _ := newRedisCredentials(t)
	mr.Close()

	if _, err := creds.Load(ctx); !errors.Is(err, ErrCredentialsUnavailable) {
		t.Fatalf("expected ErrCredentialsUnavailable, got %v", err)
	}
}
