package techhatch

import (
	"context"
	"net/http"

	"github.com/MrEthical07/techhatch/internal/flows"
	"github.com/MrEthical07/techhatch/jwt"
)

const (
	pathRegister           = "/api/v1/auth/register"
	pathLogin              = "/api/v1/auth/login"
	pathVerifyRegistration = "/api/v1/auth/otp/verify-registration"
	pathVerifyLogin        = "/api/v1/auth/otp/verify-login"
	pathResendOTP          = "/api/v1/auth/otp/resend"
	pathMe                 = "/api/v1/auth/me"
)

type credentialsRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     jwt.Role `json:"role,omitempty"`
}

type otpRequest struct {
	Email      string        `json:"email"`
	OTPCode    string        `json:"otpCode,omitempty"`
	OTPPurpose flows.Purpose `json:"otpPurpose"`
}

// authAPI is the backend surface the auth flows drive.
type authAPI struct {
	c *Client
}

func (a authAPI) Login(ctx context.Context, email, password string) (*flows.OTPAck, error) {
	var ack flows.OTPAck
	if err := a.c.do(ctx, http.MethodPost, pathLogin, nil, credentialsRequest{Email: email, Password: password}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a authAPI) Register(ctx context.Context, email, password string, role jwt.Role) (*flows.OTPAck, error) {
	var ack flows.OTPAck
	body := credentialsRequest{Email: email, Password: password, Role: role}
	if err := a.c.do(ctx, http.MethodPost, pathRegister, nil, body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a authAPI) VerifyLogin(ctx context.Context, email, code string) (*flows.VerifyLoginResponse, error) {
	var resp flows.VerifyLoginResponse
	body := otpRequest{Email: email, OTPCode: code, OTPPurpose: flows.PurposeLogin}
	if err := a.c.do(ctx, http.MethodPost, pathVerifyLogin, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a authAPI) VerifyRegistration(ctx context.Context, email, code string) (*flows.RegistrationResponse, error) {
	var resp flows.RegistrationResponse
	body := otpRequest{Email: email, OTPCode: code, OTPPurpose: flows.PurposeRegistration}
	if err := a.c.do(ctx, http.MethodPost, pathVerifyRegistration, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a authAPI) ResendOTP(ctx context.Context, email string, purpose flows.Purpose) (*flows.OTPAck, error) {
	var ack flows.OTPAck
	if err := a.c.do(ctx, http.MethodPost, pathResendOTP, nil, otpRequest{Email: email, OTPPurpose: purpose}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Login submits credentials. When the backend issues an OTP the client moves to
// OTP_PENDING and the returned Challenge describes it. A backend refusal is a
// *RejectedError carrying the server message.
func (c *Client) Login(ctx context.Context, email, password string) (*Challenge, error) {
	return flows.RunLogin(ctx, email, password, c.deps)
}

// Register submits a new account with role CANDIDATE or RECRUITER.
func (c *Client) Register(ctx context.Context, email, password string, role Role) (*Challenge, error) {
	return flows.RunRegister(ctx, email, password, role, c.deps)
}

// VerifyLoginOTP exchanges a 6-digit code for a credential and authenticates the
// client. A malformed code fails with ErrValidation without any network call.
func (c *Client) VerifyLoginOTP(ctx context.Context, email, code string) (*LoginResult, error) {
	return flows.RunVerifyLoginOTP(ctx, email, code, c.deps)
}

// VerifyRegistrationOTP confirms a registration. The client stays anonymous; the
// user signs in with Login afterwards.
func (c *Client) VerifyRegistrationOTP(ctx context.Context, email, code string) (*RegistrationResult, error) {
	return flows.RunVerifyRegistrationOTP(ctx, email, code, c.deps)
}

// ResendOTP requests a fresh code. It returns a *CooldownError while the previous
// code for the same email and purpose is younger than OTP.ResendCooldown.
func (c *Client) ResendOTP(ctx context.Context, email string, purpose OTPPurpose) (*Challenge, error) {
	return flows.RunResendOTP(ctx, email, purpose, c.deps)
}

// Cancel abandons a pending challenge locally.
func (c *Client) Cancel() AuthState {
	return flows.RunCancel(c.deps)
}

// Logout drops the credential. It never contacts the backend and always succeeds.
func (c *Client) Logout(ctx context.Context) {
	flows.RunLogout(ctx, c.deps)
}

// Restore loads the persisted credential without a server round-trip. It returns
// nil when there is no usable credential. Loading reports false afterwards.
func (c *Client) Restore(ctx context.Context) (*Session, error) {
	return flows.RunRestore(ctx, c.deps)
}

// CurrentUser fetches the account behind the credential. Callers that only need
// the identity should prefer Session, which never touches the network.
func (c *Client) CurrentUser(ctx context.Context) (*CurrentUser, error) {
	if _, ok := c.store.Current(); !ok {
		return nil, ErrNotAuthenticated
	}
	var user CurrentUser
	if err := c.do(ctx, http.MethodGet, pathMe, nil, nil, &user); err != nil {
		c.logger.DebugContext(ctx, "current user lookup failed", "error", err)
		return nil, err
	}
	return &user, nil
}
