package techhatch

import (
	"io"
	"log/slog"

	internalaudit "github.com/MrEthical07/techhatch/internal/audit"
)

// AuditEvent is one auth lifecycle record delivered to the AuditSink.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the async dispatcher.
type AuditSink = internalaudit.Sink

type (
	NoOpSink       = internalaudit.NoOpSink
	ChannelSink    = internalaudit.ChannelSink
	JSONWriterSink = internalaudit.JSONWriterSink
	LogSink        = internalaudit.LogSink
)

// Audit event types.
const (
	AuditLoginOTPIssued        = "login_otp_issued"
	AuditRegistrationOTPIssued = "registration_otp_issued"
	AuditOTPRejected           = "otp_rejected"
	AuditOTPResent             = "otp_resent"
	AuditOTPResendBlocked      = "otp_resend_blocked"
	AuditLoginSuccess          = "login_success"
	AuditLoginFailure          = "login_failure"
	AuditRegistrationSuccess   = "registration_success"
	AuditRegistrationFailure   = "registration_failure"
	AuditLogout                = "logout"
	AuditSessionRestored       = "session_restored"
	AuditSessionInvalidated    = "session_invalidated"
	AuditRetryExhausted        = "retry_exhausted"
)

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewLogSink returns a sink that logs every event through logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return internalaudit.NewLogSink(logger)
}
