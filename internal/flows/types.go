package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
)

// Purpose is the reason an OTP challenge was issued.
type Purpose string

const (
	PurposeLogin        Purpose = "LOGIN"
	PurposeRegistration Purpose = "REGISTRATION"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeLogin || p == PurposeRegistration
}

// OTPAck is the backend answer to credential submission and OTP resend.
type OTPAck struct {
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
	OTPSent bool   `json:"otpSent"`
	Error   string `json:"error,omitempty"`
}

func (a *OTPAck) text() string {
	if a == nil {
		return ""
	}
	if a.Error != "" {
		return a.Error
	}
	return a.Message
}

// VerifyLoginResponse carries the credential issued after login OTP verification.
type VerifyLoginResponse struct {
	Token   string     `json:"token"`
	UserID  jwt.UserID `json:"userId,omitempty"`
	Email   string     `json:"email,omitempty"`
	Role    string     `json:"role,omitempty"`
	Message string     `json:"message,omitempty"`
}

// RegistrationResponse is the user payload returned after registration OTP verification.
type RegistrationResponse struct {
	Success            bool       `json:"success"`
	Message            string     `json:"message,omitempty"`
	UserID             jwt.UserID `json:"userId,omitempty"`
	Email              string     `json:"email,omitempty"`
	Role               string     `json:"role,omitempty"`
	AccountStatus      string     `json:"accountStatus,omitempty"`
	VerificationStatus string     `json:"verificationStatus,omitempty"`
}

// Challenge is the client-side view of a pending OTP verification.
type Challenge struct {
	Email          string
	Purpose        Purpose
	Message        string
	IssuedAt       time.Time
	ResendCooldown time.Duration
}

// LoginOutcome is the result of a successful login OTP verification.
type LoginOutcome struct {
	UserID  string
	Email   string
	Role    jwt.Role
	Token   string
	Message string
}

// API is the backend surface used by the auth flows.
type API interface {
	Login(ctx context.Context, email, password string) (*OTPAck, error)
	Register(ctx context.Context, email, password string, role jwt.Role) (*OTPAck, error)
	VerifyLogin(ctx context.Context, email, code string) (*VerifyLoginResponse, error)
	VerifyRegistration(ctx context.Context, email, code string) (*RegistrationResponse, error)
	ResendOTP(ctx context.Context, email string, purpose Purpose) (*OTPAck, error)
}
