package flows

import (
	"context"
	"strings"
	"time"

	"github.com/MrEthical07/techhatch/internal/cooldown"
	"github.com/MrEthical07/techhatch/jwt"
	"github.com/MrEthical07/techhatch/session"
)

// DefaultResendCooldown is the wait between two OTP issuances for the same email and purpose.
const DefaultResendCooldown = 60 * time.Second

// AuthMetrics carries metric IDs used by the auth flows.
type AuthMetrics struct {
	OTPIssued           int
	OTPRejected         int
	LoginSuccess        int
	LoginFailure        int
	RegistrationSuccess int
	RegistrationFailure int
	ResendSuccess       int
	ResendBlocked       int
	ValidationRejected  int
	Logout              int
	SessionRestored     int
	SessionInvalidated  int
}

// AuthEvents carries audit event names used by the auth flows.
type AuthEvents struct {
	LoginOTPIssued        string
	RegistrationOTPIssued string
	OTPRejected           string
	LoginSuccess          string
	LoginFailure          string
	RegistrationSuccess   string
	RegistrationFailure   string
	OTPResent             string
	ResendBlocked         string
	Logout                string
	SessionRestored       string
	SessionInvalidated    string
}

// AuthDeps captures auth flow dependencies.
type AuthDeps struct {
	API            API
	Machine        *Machine
	Cooldown       cooldown.Timer
	ResendCooldown time.Duration
	Now            func() time.Time

	SetSession     func(context.Context, string) (*session.Session, error)
	ClearSession   func(context.Context) error
	RestoreSession func(context.Context) (*session.Session, error)
	CurrentSession func() (*session.Session, bool)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID, email string, err error, metadata func() map[string]string)
	Warn      func(string, ...any)

	Metrics AuthMetrics
	Events  AuthEvents
}

func (d *AuthDeps) normalize() error {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MetricInc == nil {
		d.MetricInc = func(int) {}
	}
	if d.EmitAudit == nil {
		d.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if d.Warn == nil {
		d.Warn = func(string, ...any) {}
	}
	if d.ResendCooldown <= 0 {
		d.ResendCooldown = DefaultResendCooldown
	}
	if d.Machine == nil || d.Cooldown == nil {
		return ErrNotReady
	}
	return nil
}

func (d *AuthDeps) ready() error {
	if err := d.normalize(); err != nil {
		return err
	}
	if d.API == nil || d.SetSession == nil || d.ClearSession == nil {
		return ErrNotReady
	}
	return nil
}

func (d *AuthDeps) rejectInput(err error) error {
	d.MetricInc(d.Metrics.ValidationRejected)
	return err
}

// RunLogin submits credentials. On an OTP acknowledgment the machine moves to
// OTP_PENDING and the resend cooldown starts; any failure lands in ANONYMOUS.
func RunLogin(ctx context.Context, email, password string, deps AuthDeps) (*Challenge, error) {
	if err := deps.ready(); err != nil {
		return nil, err
	}
	if deps.Machine.State() == StateAuthenticated {
		return nil, ErrAlreadyAuthenticated
	}

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, deps.rejectInput(err)
	}
	if err := validatePassword(password); err != nil {
		return nil, deps.rejectInput(err)
	}

	return runChallenge(ctx, PurposeLogin, email, &deps, func() (*OTPAck, error) {
		return deps.API.Login(ctx, email, password)
	})
}

// RunRegister submits a new account. It mirrors RunLogin.
func RunRegister(ctx context.Context, email, password string, role jwt.Role, deps AuthDeps) (*Challenge, error) {
	if err := deps.ready(); err != nil {
		return nil, err
	}
	if deps.Machine.State() == StateAuthenticated {
		return nil, ErrAlreadyAuthenticated
	}

	email = normalizeEmail(email)
	role = jwt.Role(strings.ToUpper(strings.TrimSpace(string(role))))
	if err := validateEmail(email); err != nil {
		return nil, deps.rejectInput(err)
	}
	if err := validatePassword(password); err != nil {
		return nil, deps.rejectInput(err)
	}
	if err := validateRole(role); err != nil {
		return nil, deps.rejectInput(err)
	}

	return runChallenge(ctx, PurposeRegistration, email, &deps, func() (*OTPAck, error) {
		return deps.API.Register(ctx, email, password, role)
	})
}

func runChallenge(ctx context.Context, purpose Purpose, email string, deps *AuthDeps, call func() (*OTPAck, error)) (*Challenge, error) {
	ack, err := call()
	if err == nil && (ack == nil || !ack.OTPSent) {
		err = &RejectedError{Message: ack.text()}
	}
	if err != nil {
		deps.MetricInc(deps.Metrics.OTPRejected)
		deps.EmitAudit(ctx, deps.Events.OTPRejected, false, "", email, err, func() map[string]string {
			return map[string]string{"purpose": string(purpose)}
		})
		if _, ferr := deps.Machine.Fire(EventChallengeFailed, nil); ferr != nil {
			deps.Warn("auth flow: transition failed", "event", EventChallengeFailed, "error", ferr)
		}
		return nil, err
	}

	event := deps.Events.LoginOTPIssued
	if purpose == PurposeRegistration {
		event = deps.Events.RegistrationOTPIssued
	}
	return issueChallenge(ctx, purpose, email, ack, deps, event, deps.Metrics.OTPIssued)
}

func issueChallenge(ctx context.Context, purpose Purpose, email string, ack *OTPAck, deps *AuthDeps, event string, metric int) (*Challenge, error) {
	if err := deps.Cooldown.Start(ctx, cooldown.Key(string(purpose), email), deps.ResendCooldown); err != nil {
		deps.Warn("auth flow: cooldown start failed", "purpose", string(purpose), "error", err)
	}

	ch := &Challenge{
		Email:          email,
		Purpose:        purpose,
		Message:        ack.text(),
		IssuedAt:       deps.Now(),
		ResendCooldown: deps.ResendCooldown,
	}
	if _, err := deps.Machine.Fire(EventChallengeIssued, ch); err != nil {
		return nil, err
	}

	deps.MetricInc(metric)
	deps.EmitAudit(ctx, event, true, "", email, nil, func() map[string]string {
		return map[string]string{"purpose": string(purpose)}
	})
	out := *ch
	return &out, nil
}

// RunVerifyLoginOTP exchanges a login OTP for a credential. The code is checked
// locally first; a malformed code never reaches the network. On success the
// credential is persisted and the machine moves to AUTHENTICATED.
func RunVerifyLoginOTP(ctx context.Context, email, code string, deps AuthDeps) (*LoginOutcome, error) {
	if err := deps.ready(); err != nil {
		return nil, err
	}
	if deps.Machine.State() == StateAuthenticated {
		return nil, ErrAlreadyAuthenticated
	}

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if err := validateEmail(email); err != nil {
		return nil, deps.rejectInput(err)
	}
	if err := ValidateOTP(code); err != nil {
		return nil, deps.rejectInput(err)
	}

	resp, err := deps.API.VerifyLogin(ctx, email, code)
	if err == nil && (resp == nil || resp.Token == "") {
		err = ErrMissingToken
	}
	var sess *session.Session
	if err == nil {
		sess, err = deps.SetSession(ctx, resp.Token)
	}
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", email, err, nil)
		return nil, err
	}

	if rerr := deps.Cooldown.Reset(ctx, cooldown.Key(string(PurposeLogin), email)); rerr != nil {
		deps.Warn("auth flow: cooldown reset failed", "error", rerr)
	}
	if _, ferr := deps.Machine.Fire(EventVerified, nil); ferr != nil {
		return nil, ferr
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, sess.UserID, sess.Email, nil, func() map[string]string {
		return map[string]string{"role": string(sess.Role)}
	})
	return &LoginOutcome{
		UserID:  sess.UserID,
		Email:   sess.Email,
		Role:    sess.Role,
		Token:   sess.Token,
		Message: resp.Message,
	}, nil
}

// RunVerifyRegistrationOTP confirms a registration. It never creates a session;
// the machine returns to ANONYMOUS.
func RunVerifyRegistrationOTP(ctx context.Context, email, code string, deps AuthDeps) (*RegistrationResponse, error) {
	if err := deps.ready(); err != nil {
		return nil, err
	}
	if deps.Machine.State() == StateAuthenticated {
		return nil, ErrAlreadyAuthenticated
	}

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if err := validateEmail(email); err != nil {
		return nil, deps.rejectInput(err)
	}
	if err := ValidateOTP(code); err != nil {
		return nil, deps.rejectInput(err)
	}

	resp, err := deps.API.VerifyRegistration(ctx, email, code)
	if err != nil {
		deps.MetricInc(deps.Metrics.RegistrationFailure)
		deps.EmitAudit(ctx, deps.Events.RegistrationFailure, false, "", email, err, nil)
		return nil, err
	}
	if resp == nil {
		resp = &RegistrationResponse{Success: true, Email: email}
	}

	if rerr := deps.Cooldown.Reset(ctx, cooldown.Key(string(PurposeRegistration), email)); rerr != nil {
		deps.Warn("auth flow: cooldown reset failed", "error", rerr)
	}
	if _, ferr := deps.Machine.Fire(EventRegistered, nil); ferr != nil {
		return nil, ferr
	}

	deps.MetricInc(deps.Metrics.RegistrationSuccess)
	deps.EmitAudit(ctx, deps.Events.RegistrationSuccess, true, string(resp.UserID), email, nil, func() map[string]string {
		return map[string]string{"role": resp.Role}
	})
	return resp, nil
}

// RunResendOTP re-issues a challenge. While the cooldown for email and purpose
// runs the call is blocked locally with a *CooldownError and nothing changes.
func RunResendOTP(ctx context.Context, email string, purpose Purpose, deps AuthDeps) (*Challenge, error) {
	if err := deps.ready(); err != nil {
		return nil, err
	}
	if deps.Machine.State() == StateAuthenticated {
		return nil, ErrAlreadyAuthenticated
	}

	email = normalizeEmail(email)
	purpose = Purpose(strings.ToUpper(strings.TrimSpace(string(purpose))))
	if err := validateEmail(email); err != nil {
		return nil, deps.rejectInput(err)
	}
	if err := validatePurpose(purpose); err != nil {
		return nil, deps.rejectInput(err)
	}

	remaining, err := deps.Cooldown.Remaining(ctx, cooldown.Key(string(purpose), email))
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		deps.MetricInc(deps.Metrics.ResendBlocked)
		cerr := &CooldownError{Remaining: remaining}
		deps.EmitAudit(ctx, deps.Events.ResendBlocked, false, "", email, cerr, func() map[string]string {
			return map[string]string{"purpose": string(purpose)}
		})
		return nil, cerr
	}

	ack, err := deps.API.ResendOTP(ctx, email, purpose)
	if err != nil {
		return nil, err
	}
	if ack == nil || !(ack.OTPSent || ack.Success) {
		return nil, &RejectedError{Message: ack.text()}
	}

	return issueChallenge(ctx, purpose, email, ack, &deps, deps.Events.OTPResent, deps.Metrics.ResendSuccess)
}

// RunCancel abandons a pending challenge without notifying the server. The resend
// cooldown keeps running.
func RunCancel(deps AuthDeps) State {
	if deps.Machine == nil {
		return StateAnonymous
	}
	state, _ := deps.Machine.Fire(EventCancel, nil)
	return state
}

// RunLogout drops the credential and the in-memory session. It always succeeds
// locally; a persistence failure is reported through Warn.
func RunLogout(ctx context.Context, deps AuthDeps) {
	if deps.normalize() != nil && deps.Machine == nil {
		deps.Machine = NewMachine()
	}

	var userID, email string
	if deps.CurrentSession != nil {
		if sess, ok := deps.CurrentSession(); ok {
			userID, email = sess.UserID, sess.Email
		}
	}
	if deps.ClearSession != nil {
		if err := deps.ClearSession(ctx); err != nil {
			deps.Warn("auth flow: credential delete failed", "error", err)
		}
	}
	if _, err := deps.Machine.Fire(EventLogout, nil); err != nil {
		deps.Warn("auth flow: transition failed", "event", EventLogout, "error", err)
	}

	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, true, userID, email, nil, nil)
}

// RunRestore reads the persisted credential and, when valid, moves the machine to
// AUTHENTICATED without any server round-trip.
func RunRestore(ctx context.Context, deps AuthDeps) (*session.Session, error) {
	if err := deps.normalize(); err != nil {
		return nil, err
	}
	if deps.RestoreSession == nil {
		return nil, ErrNotReady
	}

	sess, err := deps.RestoreSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		if deps.Machine.State() == StateAuthenticated {
			_, _ = deps.Machine.Fire(EventInvalidated, nil)
		}
		return nil, nil
	}

	if _, err := deps.Machine.Fire(EventRestored, nil); err != nil {
		return nil, err
	}
	deps.MetricInc(deps.Metrics.SessionRestored)
	deps.EmitAudit(ctx, deps.Events.SessionRestored, true, sess.UserID, sess.Email, nil, nil)
	return sess, nil
}

// RunSessionInvalidated records a credential teardown performed by the gateway. Only
// an authenticated client changes state; a pending challenge survives an unrelated 401.
func RunSessionInvalidated(ctx context.Context, reason string, deps AuthDeps) {
	if err := deps.normalize(); err != nil {
		return
	}
	if deps.Machine.State() == StateAuthenticated {
		if _, err := deps.Machine.Fire(EventInvalidated, nil); err != nil {
			deps.Warn("auth flow: transition failed", "event", EventInvalidated, "error", err)
		}
	}
	deps.MetricInc(deps.Metrics.SessionInvalidated)
	deps.EmitAudit(ctx, deps.Events.SessionInvalidated, false, "", "", nil, func() map[string]string {
		return map[string]string{"reason": reason}
	})
}
