package session

import (
	"time"

	"github.com/MrEthical07/techhatch/jwt"
)

// Session is the authenticated identity derived from a credential.
type Session struct {
	UserID    string
	Email     string
	Role      jwt.Role
	Token     string
	ExpiresAt time.Time
}

// FromToken decodes token into a Session.
func FromToken(token string) (*Session, error) {
	claims, err := jwt.Decode(token)
	if err != nil {
		return nil, err
	}

	s := &Session{
		UserID: string(claims.UserID),
		Email:  claims.Email(),
		Role:   claims.Role,
		Token:  token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// HasRole reports whether the session role is one of roles.
func (s *Session) HasRole(roles ...jwt.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
