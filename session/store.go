package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
)

// ErrInvalidCredential is returned by Set when the credential cannot be decoded,
// carries an unknown role or has already expired.
var ErrInvalidCredential = errors.New("invalid credential")

// Store is the session manager handed to every component that needs the current
// identity. It implements the transport token source.
type Store struct {
	creds CredentialStore
	now   func() time.Time

	mu      sync.RWMutex
	current *Session
	loaded  bool

	memoToken   string
	memoSession *Session
}

// NewStore returns a Store persisting through creds. A nil creds uses memory.
func NewStore(creds CredentialStore) *Store {
	if creds == nil {
		creds = NewMemoryCredentials()
	}
	return &Store{creds: creds, now: time.Now}
}

// WithClock overrides the clock used for expiry checks.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Credentials returns the persistence backend.
func (s *Store) Credentials() CredentialStore { return s.creds }

// Restore loads the persisted credential and, when it is present and not expired,
// decodes it into the current session without any server round-trip. Expired,
// undecodable and unknown-role credentials are deleted. Loading reports false afterwards in every case
// except a backend failure.
func (s *Store) Restore(ctx context.Context) (*Session, error) {
	token, err := s.creds.Load(ctx)
	if err != nil {
		return nil, err
	}

	if token == "" {
		s.setCurrent(nil, true)
		return nil, nil
	}

	if jwt.IsExpired(token, s.now()) {
		if err := s.creds.Delete(ctx); err != nil {
			return nil, err
		}
		s.setCurrent(nil, true)
		return nil, nil
	}

	sess, err := s.decode(token)
	if err != nil || !sess.Role.Valid() {
		if derr := s.creds.Delete(ctx); derr != nil {
			return nil, derr
		}
		s.setCurrent(nil, true)
		return nil, nil
	}

	s.setCurrent(sess, true)
	return cloneSession(sess), nil
}

// Set replaces the credential wholesale after a successful authentication event.
func (s *Store) Set(ctx context.Context, token string) (*Session, error) {
	sess, err := s.decode(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidCredential, err)
	}
	if !sess.Role.Valid() || jwt.IsExpired(token, s.now()) {
		return nil, ErrInvalidCredential
	}
	if err := s.creds.Save(ctx, token); err != nil {
		return nil, err
	}

	s.setCurrent(sess, true)
	return cloneSession(sess), nil
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return cloneSession(s.current), true
}

// Loading reports whether Restore has not completed yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded
}

// Token returns the persisted credential. It reads the backend on every call and
// re-derives the in-memory session whenever the credential was removed or replaced
// by another process, so Current always describes the token being sent.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.creds.Load(ctx)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	same := s.current != nil && s.current.Token == token
	s.mu.RUnlock()
	if same {
		return token, nil
	}

	var next *Session
	if token != "" {
		if sess, err := s.decode(token); err == nil && sess.Role.Valid() {
			next = sess
		}
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return token, nil
}

// Clear deletes the persisted credential and the in-memory session. The in-memory
// session is dropped even when the backend delete fails.
func (s *Store) Clear(ctx context.Context) error {
	s.setCurrent(nil, true)
	return s.creds.Delete(ctx)
}

func (s *Store) decode(token string) (*Session, error) {
	s.mu.RLock()
	if s.memoSession != nil && s.memoToken == token {
		sess := s.memoSession
		s.mu.RUnlock()
		return sess, nil
	}
	s.mu.RUnlock()

	sess, err := FromToken(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.memoToken = token
	s.memoSession = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Store) setCurrent(sess *Session, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
	s.loaded = loaded
}

func cloneSession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
