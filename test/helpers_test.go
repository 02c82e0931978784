//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/apitest"
	"github.com/MrEthical07/techhatch/internal/logging"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const integrationOTP = "246810"

// cmdCounter is a go-redis Hook that counts the number of Redis round-trips
// (individual commands and pipeline calls).
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func (h *cmdCounter) Commands() int64  { return h.commands.Load() }
func (h *cmdCounter) Pipelines() int64 { return h.pipelines.Load() }

// sharedEnv is one backend plus one redis that several clients point at, the way
// several processes of one user share a credential.
type sharedEnv struct {
	mr      *miniredis.Miniredis
	backend *apitest.Server
}

func newSharedEnv(t *testing.T) *sharedEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	backend := apitest.New(apitest.WithOTP(integrationOTP))
	t.Cleanup(backend.Close)
	backend.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")

	return &sharedEnv{mr: mr, backend: backend}
}

func (e *sharedEnv) config() techhatch.Config {
	cfg := techhatch.DefaultConfig()
	cfg.API.BaseURL = e.backend.URL()
	cfg.Credentials.Backend = techhatch.CredentialsRedis
	cfg.OTP.CooldownBackend = "redis"
	cfg.Metrics.Enabled = true
	return cfg
}

// newClient builds a client on its own redis connection. counter may be nil.
func (e *sharedEnv) newClient(t *testing.T, counter *cmdCounter) *techhatch.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{Addr: e.mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// Warm the connection so handshake commands are not counted.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}
	if counter != nil {
		rdb.AddHook(counter)
	}

	c, err := techhatch.New().
		WithConfig(e.config()).
		WithRedis(rdb).
		WithLogger(logging.Discard()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func signIn(t *testing.T, c *techhatch.Client) {
	t.Helper()
	ctx := context.Background()
	if _, err := c.Login(ctx, "ada@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := c.VerifyLoginOTP(ctx, "ada@example.com", integrationOTP); err != nil {
		t.Fatalf("VerifyLoginOTP failed: %v", err)
	}
}
