package stepAuth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MrEthical07/stepAuth/account"
	"github.com/MrEthical07/stepAuth/jwt"
	"github.com/MrEthical07/stepAuth/password"
)

// Engine defines a public type used by stepAuth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	store        AccountStore
	notifier     Notifier
	audit        *auditDispatcher
	metrics      *Metrics
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// VerifySessionToken parses and validates a session token issued by
// [Engine.CompleteProfile] or [Engine.ConfirmLogin], returning the account
// ID and role bound into it.
func (e *Engine) VerifySessionToken(token string) (accountID, role string, err error) {
	if e == nil || e.jwtManager == nil {
		return "", "", ErrEngineNotReady
	}
	claims, err := e.jwtManager.ParseSession(token)
	if err != nil {
		return "", "", err
	}
	return claims.AID, claims.Role, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) warn(msg string) {
	log.Print(msg)
}

func (e *Engine) devEcho(code string) string {
	if e.config.Environment == EnvDevelopment {
		return code
	}
	return ""
}

func (e *Engine) issueSessionToken(acct *Account) (string, error) {
	if e.jwtManager == nil {
		return "", ErrEngineNotReady
	}
	return e.jwtManager.CreateSession(acct.ID, acct.Role)
}

// updateAccount runs a read-mutate-write cycle against the store with
// optimistic retries. The mutate callback sees a fresh record on every
// attempt, so a caller that lost a race observes the winner's changes
// before deciding whether to fail. A mutate error aborts without writing.
func (e *Engine) updateAccount(
	ctx context.Context,
	id string,
	mutate func(acct *Account) error,
) (*Account, error) {
	retries := e.config.Store.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	for i := 0; i < retries; i++ {
		acct, err := e.store.GetByID(ctx, id)
		if err != nil {
			return nil, mapStoreError(err)
		}

		if err := mutate(acct); err != nil {
			return nil, err
		}

		err = e.store.Update(ctx, acct)
		if errors.Is(err, account.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, mapStoreError(err)
		}
		return acct, nil
	}

	return nil, ErrStoreUnavailable
}

// notify invokes the configured Notifier off the request path, bounded by
// the notifier timeout. Failures are logged and audited but never surfaced
// to the caller.
func (e *Engine) notify(
	accountID, email, code string,
	send func(ctx context.Context, email, code string) error,
) {
	if e.notifier == nil {
		return
	}

	timeout := e.config.Notifier.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- send(ctx, email, code)
		}()

		var err error
		select {
		case err = <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
		if err != nil {
			e.warn("stepAuth: code delivery failed")
			e.metricInc(MetricNotifierFailure)
			e.emitAudit(ctx, auditEventNotifierFailure, false, accountID, nil, func() map[string]string {
				return map[string]string{
					"reason": err.Error(),
				}
			})
		}
	}()
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, account.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, account.ErrDuplicateEmail):
		return ErrDuplicateEmail
	default:
		return ErrStoreUnavailable
	}
}
