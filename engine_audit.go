package stepAuth

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignupStarted    = "signup_started"
	auditEventSignupConfirmed  = "signup_confirmed"
	auditEventSignupFailure    = "signup_failure"
	auditEventProfileCompleted = "profile_completed"
	auditEventProfileFailure   = "profile_failure"
	auditEventLoginCodeIssued  = "login_code_issued"
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventNotifierFailure  = "notifier_failure"
)

// AuditErrorCode defines a public type used by stepAuth APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidInput        AuditErrorCode = "invalid_input"
	auditErrMissingFields       AuditErrorCode = "missing_fields"
	auditErrNotFound            AuditErrorCode = "account_not_found"
	auditErrDuplicate           AuditErrorCode = "duplicate_email"
	auditErrRoleInvalid         AuditErrorCode = "role_invalid"
	auditErrPasswordPolicy      AuditErrorCode = "password_policy"
	auditErrAlreadyConfirmed    AuditErrorCode = "already_confirmed"
	auditErrNotConfirmed        AuditErrorCode = "not_confirmed"
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrInvalidCode         AuditErrorCode = "invalid_code"
	auditErrCodeExpired         AuditErrorCode = "code_expired"
	auditErrNoPendingCode       AuditErrorCode = "no_pending_code"
	auditErrMissingStudentField AuditErrorCode = "missing_student_fields"
	auditErrUnavailable         AuditErrorCode = "backend_unavailable"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrMissingFields):
		return auditErrMissingFields
	case errors.Is(err, ErrAccountNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, ErrRoleInvalid):
		return auditErrRoleInvalid
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrAlreadyConfirmed):
		return auditErrAlreadyConfirmed
	case errors.Is(err, ErrNotConfirmed):
		return auditErrNotConfirmed
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrInvalidCode):
		return auditErrInvalidCode
	case errors.Is(err, ErrCodeExpired):
		return auditErrCodeExpired
	case errors.Is(err, ErrNoPendingCode):
		return auditErrNoPendingCode
	case errors.Is(err, ErrMissingStudentFields):
		return auditErrMissingStudentField
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
