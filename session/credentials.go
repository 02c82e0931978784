package session

import (
	"context"
	"errors"
	"sync"
)

// ErrCredentialsUnavailable wraps backend failures of a CredentialStore.
var ErrCredentialsUnavailable = errors.New("credential store unavailable")

// CredentialStore persists the single credential string. Load returns "" when nothing
// is stored.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// MemoryCredentials keeps the credential in process memory.
type MemoryCredentials struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{}
}

func (m *MemoryCredentials) Load(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryCredentials) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryCredentials) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
