package jwt

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the algorithm used by a Signer.
type SigningMethod string

const (
	MethodHS256   SigningMethod = "hs256"
	MethodEd25519 SigningMethod = "ed25519"
)

// SignerConfig configures credential minting.
type SignerConfig struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	Issuer        string
	KeyID         string
}

// Signer mints credentials with the claim layout the backend issues. It exists for
// fakes and fixtures; production credentials always come from the backend.
type Signer struct {
	config SignerConfig
	now    func() time.Time
}

// NewSigner validates cfg and returns a Signer.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	if cfg.SigningMethod == "" {
		cfg.SigningMethod = MethodHS256
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Signer{config: cfg, now: time.Now}, nil
}

// WithClock overrides the issuing clock.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	if now != nil {
		s.now = now
	}
	return s
}

// Issue mints a credential for the given identity using the configured TTL.
func (s *Signer) Issue(email string, role Role, userID string) (string, error) {
	return s.IssueWithTTL(email, role, userID, s.config.TTL)
}

// IssueWithTTL mints a credential with an explicit lifetime. A negative ttl yields an
// already expired credential.
func (s *Signer) IssueWithTTL(email string, role Role, userID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Role:   role,
		UserID: UserID(userID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(s.method(), claims)
	if s.config.KeyID != "" {
		token.Header["kid"] = s.config.KeyID
	}

	key, err := s.signKey()
	if err != nil {
		return "", err
	}
	return token.SignedString(key)
}

func (s *Signer) method() jwt.SigningMethod {
	if s.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (s *Signer) signKey() (interface{}, error) {
	if s.config.SigningMethod == MethodEd25519 {
		return parseEdPrivateKey(s.config.PrivateKey)
	}
	return s.config.PrivateKey, nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}
