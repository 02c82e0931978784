package flows

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrOTPNotSent is returned when the backend answered without issuing a challenge.
	ErrOTPNotSent = errors.New("otp not sent")
	// ErrCooldownActive is returned when a resend is attempted during the cooldown.
	ErrCooldownActive = errors.New("otp resend cooldown active")
	// ErrAlreadyAuthenticated is returned when a login starts while a session exists.
	ErrAlreadyAuthenticated = errors.New("already logged in")
	// ErrMissingToken is returned when login verification succeeds without a credential.
	ErrMissingToken = errors.New("verification response carried no token")
	// ErrNotReady is returned when a flow is missing a required dependency.
	ErrNotReady = errors.New("auth flow not initialized")
)

// RejectedError carries the backend message of a challenge that was not issued.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrOTPNotSent.Error()
	}
	return fmt.Sprintf("%s: %s", ErrOTPNotSent, e.Message)
}

func (e *RejectedError) Is(target error) bool { return target == ErrOTPNotSent }

// CooldownError reports how long the resend cooldown still runs.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrCooldownActive, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }
