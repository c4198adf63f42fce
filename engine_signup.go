package stepAuth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/MrEthical07/stepAuth/internal"
	"github.com/google/uuid"
)

// BeginSignup describes the beginsignup operation and its observable behavior.
//
// BeginSignup may return an error when input validation, dependency calls, or security checks fail.
// BeginSignup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginSignup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", ErrMissingFields, nil)
		return nil, ErrMissingFields
	}
	if !validEmail(email) {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", ErrInvalidInput, func() map[string]string {
			return map[string]string{
				"reason": "malformed_email",
			}
		})
		return nil, ErrInvalidInput
	}
	if len(req.Password) < e.config.Password.MinLength {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", ErrPasswordPolicy, nil)
		return nil, ErrPasswordPolicy
	}

	role := req.Role
	if role == "" {
		role = e.config.Signup.DefaultRole
	}
	if !validRole(role) {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", ErrRoleInvalid, nil)
		return nil, ErrRoleInvalid
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", err, nil)
		return nil, err
	}

	code, err := internal.NewCode(e.config.Signup.CodeDigits)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", err, nil)
		return nil, err
	}

	now := time.Now()
	acct := &Account{
		ID:                   uuid.NewString(),
		Email:                email,
		PasswordHash:         hash,
		Role:                 role,
		ConfirmationCode:     code,
		ConfirmationIssuedAt: now.Unix(),
		CreatedAt:            now.Unix(),
	}

	if err := e.store.Create(ctx, acct); err != nil {
		mapped := mapStoreError(err)
		if mapped == ErrDuplicateEmail {
			e.metricInc(MetricSignupDuplicate)
		} else {
			e.metricInc(MetricSignupFailure)
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, "", mapped, func() map[string]string {
			return map[string]string{
				"email": email,
			}
		})
		return nil, mapped
	}

	e.notify(acct.ID, email, code, func(ctx context.Context, email, code string) error {
		return e.notifier.SendConfirmationCode(ctx, email, code)
	})

	e.metricInc(MetricSignupStarted)
	e.emitAudit(ctx, auditEventSignupStarted, true, acct.ID, nil, func() map[string]string {
		return map[string]string{
			"email": email,
			"role":  role,
		}
	})

	return &SignupResult{
		AccountID:        acct.ID,
		Email:            email,
		Role:             role,
		ConfirmationCode: e.devEcho(code),
	}, nil
}

// ConfirmSignup describes the confirmsignup operation and its observable behavior.
//
// ConfirmSignup may return an error when input validation, dependency calls, or security checks fail.
// ConfirmSignup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmSignup(ctx context.Context, accountID, code string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if accountID == "" || code == "" {
		return ErrMissingFields
	}

	var expired bool
	ttl := e.config.Signup.ConfirmationTTL

	_, err := e.updateAccount(ctx, accountID, func(acct *Account) error {
		expired = false
		if acct.Confirmed {
			return ErrAlreadyConfirmed
		}
		if acct.ConfirmationCode == "" {
			return ErrNoPendingCode
		}
		if ttl > 0 && acct.ConfirmationIssuedAt > 0 &&
			time.Now().After(time.Unix(acct.ConfirmationIssuedAt, 0).Add(ttl)) {
			// Commit the cleared code so the next attempt reports no pending code.
			acct.ConfirmationCode = ""
			acct.ConfirmationIssuedAt = 0
			expired = true
			return nil
		}
		if subtle.ConstantTimeCompare([]byte(acct.ConfirmationCode), []byte(code)) != 1 {
			return ErrInvalidCode
		}
		acct.Confirmed = true
		acct.ConfirmationCode = ""
		acct.ConfirmationIssuedAt = 0
		return nil
	})
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, accountID, err, nil)
		return err
	}
	if expired {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, accountID, ErrCodeExpired, nil)
		return ErrCodeExpired
	}

	e.metricInc(MetricSignupConfirmed)
	e.emitAudit(ctx, auditEventSignupConfirmed, true, accountID, nil, nil)
	return nil
}

// CompleteProfile describes the completeprofile operation and its observable behavior.
//
// CompleteProfile may return an error when input validation, dependency calls, or security checks fail.
// CompleteProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CompleteProfile(ctx context.Context, req ProfileRequest) (*ProfileResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if req.AccountID == "" {
		return nil, ErrMissingFields
	}

	fullName := strings.TrimSpace(req.FullName)
	school := strings.TrimSpace(req.School)
	major := strings.TrimSpace(req.Major)
	classification := strings.TrimSpace(req.Classification)

	// Field presence is validated before the account is even looked up, so
	// a blank name reads the same for unknown, unconfirmed, and confirmed
	// accounts.
	if fullName == "" || school == "" {
		e.metricInc(MetricProfileFailure)
		e.emitAudit(ctx, auditEventProfileFailure, false, req.AccountID, ErrMissingFields, nil)
		return nil, ErrMissingFields
	}

	acct, err := e.updateAccount(ctx, req.AccountID, func(acct *Account) error {
		if !acct.Confirmed {
			return ErrNotConfirmed
		}
		if acct.Role == RoleStudent && (major == "" || classification == "") {
			return ErrMissingStudentFields
		}

		acct.FullName = fullName
		acct.School = school
		if acct.Role == RoleStudent {
			acct.Major = major
			acct.Classification = classification
		} else {
			acct.Major = ""
			acct.Classification = ""
		}
		acct.ProfileComplete = true
		return nil
	})
	if err != nil {
		e.metricInc(MetricProfileFailure)
		e.emitAudit(ctx, auditEventProfileFailure, false, req.AccountID, err, nil)
		return nil, err
	}

	token, err := e.issueSessionToken(acct)
	if err != nil {
		e.metricInc(MetricProfileFailure)
		e.emitAudit(ctx, auditEventProfileFailure, false, acct.ID, err, nil)
		return nil, err
	}

	e.metricInc(MetricProfileCompleted)
	e.metricInc(MetricSessionIssued)
	e.emitAudit(ctx, auditEventProfileCompleted, true, acct.ID, nil, func() map[string]string {
		return map[string]string{
			"role": acct.Role,
		}
	})

	return &ProfileResult{
		Token:   token,
		Profile: sanitizeProfile(acct),
	}, nil
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
