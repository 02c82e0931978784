package cooldown

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Timer tracks cooldowns per key.
type Timer interface {
	// Remaining returns how long the cooldown for key still runs; zero when idle.
	Remaining(ctx context.Context, key string) (time.Duration, error)
	// Start (re)starts the cooldown for key with the given duration.
	Start(ctx context.Context, key string, d time.Duration) error
	// Reset drops the cooldown for key.
	Reset(ctx context.Context, key string) error
}

// Key builds the canonical cooldown key.
func Key(purpose, email string) string {
	return strings.ToUpper(purpose) + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Memory is an in-process Timer driven by an injectable clock.
type Memory struct {
	mu       sync.Mutex
	now      func() time.Time
	deadline map[string]time.Time
}

// NewMemory returns a Memory timer. A nil clock uses time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now, deadline: make(map[string]time.Time)}
}

func (m *Memory) Remaining(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline, ok := m.deadline[key]
	if !ok {
		return 0, nil
	}
	left := deadline.Sub(m.now())
	if left <= 0 {
		delete(m.deadline, key)
		return 0, nil
	}
	return left, nil
}

func (m *Memory) Start(_ context.Context, key string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d <= 0 {
		delete(m.deadline, key)
		return nil
	}
	m.deadline[key] = m.now().Add(d)
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deadline, key)
	return nil
}
