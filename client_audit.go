package techhatch

import (
	"context"
	"errors"

	"github.com/MrEthical07/techhatch/transport"
)

// AuditErrorCode is the stable failure label stored in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrValidation        AuditErrorCode = "validation"
	auditErrOTPNotSent        AuditErrorCode = "otp_not_sent"
	auditErrCooldownActive    AuditErrorCode = "cooldown_active"
	auditErrAlreadyAuthed     AuditErrorCode = "already_authenticated"
	auditErrMissingToken      AuditErrorCode = "missing_token"
	auditErrInvalidCredential AuditErrorCode = "invalid_credential"
	auditErrTokenExpired      AuditErrorCode = "token_expired"
	auditErrUnauthorized      AuditErrorCode = "unauthorized"
	auditErrTransient         AuditErrorCode = "transient"
	auditErrRejected          AuditErrorCode = "rejected"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: c.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		RequestID: transport.RequestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidation):
		return auditErrValidation
	case errors.Is(err, ErrOTPNotSent):
		return auditErrOTPNotSent
	case errors.Is(err, ErrCooldownActive):
		return auditErrCooldownActive
	case errors.Is(err, ErrAlreadyAuthenticated):
		return auditErrAlreadyAuthed
	case errors.Is(err, ErrMissingToken):
		return auditErrMissingToken
	case errors.Is(err, ErrInvalidCredential), errors.Is(err, ErrDecode):
		return auditErrInvalidCredential
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrTransient):
		return auditErrTransient
	case errors.Is(err, ErrDomain):
		return auditErrRejected
	default:
		return auditErrInternal
	}
}
