package transport

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks malformed local input rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized marks a 401 response; the session has been torn down.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTokenExpired marks a request aborted locally because the credential expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrTransient marks a network failure or 5xx response that exhausted its retries.
	ErrTransient = errors.New("transient failure")
	// ErrDomain marks a 4xx response other than 401.
	ErrDomain = errors.New("request rejected")
)

// Kind classifies an Error.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindTransient
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransient:
		return "transient"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindAuth:
		return ErrUnauthorized
	case KindTransient:
		return ErrTransient
	case KindDomain:
		return ErrDomain
	default:
		return nil
	}
}

// Error is the failure surfaced by every client operation.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Details   []string
	Field     string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Status != 0 {
		msg = http.StatusText(e.Status)
	}
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind, so errors.Is(err, ErrDomain) works
// without unwrapping.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// NotFound reports whether err is a 404 domain error.
func NotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindDomain && e.Status == http.StatusNotFound
}

// Validation builds a local validation error.
func Validation(field, message string, cause error) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message, Err: cause}
}

// errorBody is the backend error envelope.
type errorBody struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Status    int      `json:"status"`
	Error     string   `json:"error"`
	Path      string   `json:"path"`
	Timestamp string   `json:"timeStamp"`
	Details   []string `json:"details"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
