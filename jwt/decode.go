package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned when a string is not structurally a signed token.
var ErrDecode = errors.New("token decode failed")

// DecodeError describes why a credential could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrDecode, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

var parser = jwt.NewParser(jwt.WithJSONNumber())

// Decode extracts the claims of token without verifying its signature.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &DecodeError{Reason: "empty token"}
	}
	if strings.Count(token, ".") != 2 {
		return nil, &DecodeError{Reason: "token must have three segments"}
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, &DecodeError{Reason: "malformed token", Err: err}
	}

	return claims, nil
}

// ExpiresAt returns the expiry claim of token. ok is false when the token cannot be
// decoded or carries no expiry.
func ExpiresAt(token string) (time.Time, bool) {
	claims, err := Decode(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsExpired reports whether token should be treated as expired at now. Undecodable
// tokens and tokens without an expiry claim are expired.
func IsExpired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return true
	}
	return !exp.After(now)
}
