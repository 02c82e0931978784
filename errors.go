package techhatch

import (
	"errors"

	"github.com/MrEthical07/techhatch/internal/flows"
	"github.com/MrEthical07/techhatch/jwt"
	"github.com/MrEthical07/techhatch/session"
	"github.com/MrEthical07/techhatch/transport"
)

// Error is the structured failure returned by every REST call.
type Error = transport.Error

var (
	// ErrValidation marks malformed local input rejected before any network call.
	ErrValidation = transport.ErrValidation
	// ErrUnauthorized marks a 401 response; the session has been torn down.
	ErrUnauthorized = transport.ErrUnauthorized
	// ErrTokenExpired marks a call aborted locally because the credential expired.
	ErrTokenExpired = transport.ErrTokenExpired
	// ErrTransient marks a network failure or 5xx response that exhausted its retries.
	ErrTransient = transport.ErrTransient
	// ErrDomain marks a 4xx response other than 401.
	ErrDomain = transport.ErrDomain

	// ErrDecode marks a credential that is not a structurally valid token.
	ErrDecode = jwt.ErrDecode
	// ErrInvalidCredential marks a credential without a usable role.
	ErrInvalidCredential = session.ErrInvalidCredential

	// ErrOTPNotSent is returned when the backend did not issue a challenge.
	ErrOTPNotSent = flows.ErrOTPNotSent
	// ErrCooldownActive is returned by ResendOTP while the resend cooldown runs.
	ErrCooldownActive = flows.ErrCooldownActive
	// ErrAlreadyAuthenticated is returned when an auth flow starts while logged in.
	ErrAlreadyAuthenticated = flows.ErrAlreadyAuthenticated
	// ErrMissingToken is returned when login verification carried no credential.
	ErrMissingToken = flows.ErrMissingToken

	// ErrNotAuthenticated is returned by calls that need a session when there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrClientClosed is returned after Close.
	ErrClientClosed = errors.New("client closed")
	// ErrRedisRequired is returned by Build when a redis-backed component has no client.
	ErrRedisRequired = errors.New("redis client required")
)

// CooldownError reports the time left before another OTP may be requested.
type CooldownError = flows.CooldownError

// RejectedError carries the backend message of a challenge that was not issued.
type RejectedError = flows.RejectedError

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return transport.NotFound(err)
}
