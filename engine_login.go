package stepAuth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/MrEthical07/stepAuth/internal"
)

// BeginLogin describes the beginlogin operation and its observable behavior.
//
// BeginLogin may return an error when input validation, dependency calls, or security checks fail.
// BeginLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginLogin(ctx context.Context, email, password string) (*LoginChallenge, error) {
	if e == nil || e.store == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrMissingFields, nil)
		return nil, ErrMissingFields
	}

	acct, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		mapped := mapStoreError(err)
		if mapped == ErrAccountNotFound {
			// Unknown emails fail exactly like wrong passwords.
			mapped = ErrInvalidCredentials
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", mapped, func() map[string]string {
			return map[string]string{
				"reason": "account_lookup",
			}
		})
		return nil, mapped
	}

	ok, err := e.passwordHash.Verify(password, acct.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}

	if !acct.Confirmed {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, ErrNotConfirmed, nil)
		return nil, ErrNotConfirmed
	}

	if e.config.Password.UpgradeOnLogin {
		if needsUpgrade, uerr := e.passwordHash.NeedsUpgrade(acct.PasswordHash); uerr == nil && needsUpgrade {
			if upgradedHash, herr := e.passwordHash.Hash(password); herr == nil {
				// Rehash update is best-effort and must not block the login flow.
				if _, werr := e.updateAccount(ctx, acct.ID, func(a *Account) error {
					a.PasswordHash = upgradedHash
					return nil
				}); werr != nil {
					e.warn("stepAuth: password hash upgrade update failed")
				}
			} else {
				e.warn("stepAuth: password hash upgrade generation failed")
			}
		}
	}

	code, err := internal.NewCode(e.config.Login.CodeDigits)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, err, nil)
		return nil, err
	}

	expiresAt := time.Now().Add(e.config.Login.CodeTTL).Unix()
	updated, err := e.updateAccount(ctx, acct.ID, func(a *Account) error {
		// A repeated step-one replaces any earlier pending code.
		a.LoginCode = code
		a.LoginCodeExpiresAt = expiresAt
		return nil
	})
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, err, nil)
		return nil, err
	}

	e.notify(updated.ID, updated.Email, code, func(ctx context.Context, email, code string) error {
		return e.notifier.SendLoginCode(ctx, email, code)
	})

	e.metricInc(MetricLoginCodeIssued)
	e.emitAudit(ctx, auditEventLoginCodeIssued, true, updated.ID, nil, nil)

	return &LoginChallenge{
		AccountID: updated.ID,
		LoginCode: e.devEcho(code),
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmLogin describes the confirmlogin operation and its observable behavior.
//
// ConfirmLogin may return an error when input validation, dependency calls, or security checks fail.
// ConfirmLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmLogin(ctx context.Context, accountID, code string) (*LoginResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if accountID == "" || code == "" {
		return nil, ErrMissingFields
	}

	var expired bool

	acct, err := e.updateAccount(ctx, accountID, func(acct *Account) error {
		expired = false
		if acct.LoginCode == "" {
			return ErrNoPendingCode
		}
		if acct.LoginCodeExpiresAt > 0 && time.Now().Unix() > acct.LoginCodeExpiresAt {
			// Commit the cleared code so the next attempt reports no pending code.
			acct.LoginCode = ""
			acct.LoginCodeExpiresAt = 0
			expired = true
			return nil
		}
		if subtle.ConstantTimeCompare([]byte(acct.LoginCode), []byte(code)) != 1 {
			// A mismatch leaves the pending code untouched.
			return ErrInvalidCode
		}
		acct.LoginCode = ""
		acct.LoginCodeExpiresAt = 0
		return nil
	})
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, accountID, err, nil)
		return nil, err
	}
	if expired {
		e.metricInc(MetricLoginCodeExpired)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, accountID, ErrCodeExpired, nil)
		return nil, ErrCodeExpired
	}

	token, err := e.issueSessionToken(acct)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, accountID, err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionIssued)
	e.emitAudit(ctx, auditEventLoginSuccess, true, acct.ID, nil, nil)

	return &LoginResult{
		Token:   token,
		Profile: sanitizeProfile(acct),
	}, nil
}
