package stepAuth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func loginReadyAccount(t *testing.T, engine *Engine, email string) *SignupResult {
	t.Helper()

	res := confirmedTestAccount(t, engine, email)
	_, err := engine.CompleteProfile(context.Background(), ProfileRequest{
		AccountID:      res.AccountID,
		FullName:       "Alice Doe",
		School:         "State University",
		Major:          "Computer Science",
		Classification: "freshman",
	})
	if err != nil {
		t.Fatalf("CompleteProfile failed: %v", err)
	}
	return res
}

func TestBeginLoginIssuesCode(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	res := loginReadyAccount(t, engine, "alice@example.com")

	challenge, err := engine.BeginLogin(ctx, "ALICE@example.com", "hunter22")
	if err != nil {
		t.Fatalf("BeginLogin failed: %v", err)
	}
	if challenge.AccountID != res.AccountID {
		t.Fatalf("unexpected account id %s", challenge.AccountID)
	}
	if len(challenge.LoginCode) != 6 {
		t.Fatalf("expected 6-digit dev code, got %q", challenge.LoginCode)
	}

	ttl := time.Until(time.Unix(challenge.ExpiresAt, 0))
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Fatalf("unexpected code ttl %v", ttl)
	}
}

func TestBeginLoginUniformInvalidCredentials(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	loginReadyAccount(t, engine, "alice@example.com")

	_, unknownErr := engine.BeginLogin(ctx, "nobody@example.com", "hunter22")
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
	}

	_, wrongErr := engine.BeginLogin(ctx, "alice@example.com", "wrong-pass")
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}

	// Both failures surface the identical message so callers cannot
	// probe which emails exist.
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("error messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestBeginLoginUnconfirmedAccount(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	signupTestAccount(t, engine, "alice@example.com")

	_, err := engine.BeginLogin(context.Background(), "alice@example.com", "hunter22")
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
}

func TestConfirmLoginSuccessConsumesCode(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	loginReadyAccount(t, engine, "alice@example.com")

	challenge, err := engine.BeginLogin(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("BeginLogin failed: %v", err)
	}

	out, err := engine.ConfirmLogin(ctx, challenge.AccountID, challenge.LoginCode)
	if err != nil {
		t.Fatalf("ConfirmLogin failed: %v", err)
	}
	if out.Token == "" {
		t.Fatal("expected session token")
	}
	if out.Profile.Email != "alice@example.com" {
		t.Fatalf("unexpected profile email %s", out.Profile.Email)
	}

	accountID, role, err := engine.VerifySessionToken(out.Token)
	if err != nil {
		t.Fatalf("VerifySessionToken failed: %v", err)
	}
	if accountID != challenge.AccountID || role != RoleStudent {
		t.Fatalf("unexpected token claims: %s %s", accountID, role)
	}

	// The code is single-use.
	if _, err := engine.ConfirmLogin(ctx, challenge.AccountID, challenge.LoginCode); !errors.Is(err, ErrNoPendingCode) {
		t.Fatalf("expected ErrNoPendingCode on replay, got %v", err)
	}
}

func TestConfirmLoginWrongCodeKeepsPending(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	loginReadyAccount(t, engine, "alice@example.com")

	challenge, err := engine.BeginLogin(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("BeginLogin failed: %v", err)
	}

	if _, err := engine.ConfirmLogin(ctx, challenge.AccountID, "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	// A miss does not burn the pending code.
	if _, err := engine.ConfirmLogin(ctx, challenge.AccountID, challenge.LoginCode); err != nil {
		t.Fatalf("ConfirmLogin after miss failed: %v", err)
	}
}

func TestConfirmLoginExpiredCode(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	loginReadyAccount(t, engine, "alice@example.com")

	challenge, err := engine.BeginLogin(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("BeginLogin failed: %v", err)
	}

	// Backdate the expiry.
	acct, err := engine.store.GetByID(ctx, challenge.AccountID)
	if err != nil {
		t.Fatalf("store lookup failed: %v", err)
	}
	acct.LoginCodeExpiresAt = time.Now().Add(-time.Minute).Unix()
	if err := engine.store.Update(ctx, acct); err != nil {
		t.Fatalf("store update failed: %v", err)
	}

	if _, err := engine.ConfirmLogin(ctx, challenge.AccountID, challenge.LoginCode); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
	// Expiry consumed the code, so a retry sees nothing pending.
	if _, err := engine.ConfirmLogin(ctx, challenge.AccountID, challenge.LoginCode); !errors.Is(err, ErrNoPendingCode) {
		t.Fatalf("expected ErrNoPendingCode after expiry, got %v", err)
	}
}

func TestBeginLoginReplacesPendingCode(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	loginReadyAccount(t, engine, "alice@example.com")

	first, err := engine.BeginLogin(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("first BeginLogin failed: %v", err)
	}
	second, err := engine.BeginLogin(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("second BeginLogin failed: %v", err)
	}

	if first.LoginCode == second.LoginCode {
		// Extremely unlikely collision; treat it as a test setup failure.
		t.Skip("generated codes collided")
	}

	if _, err := engine.ConfirmLogin(ctx, first.AccountID, first.LoginCode); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected stale code to be rejected, got %v", err)
	}
	if _, err := engine.ConfirmLogin(ctx, second.AccountID, second.LoginCode); err != nil {
		t.Fatalf("ConfirmLogin with fresh code failed: %v", err)
	}
}

func TestConfirmLoginConcurrentCallsSingleSuccess(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	loginReadyAccount(t, engine, "alice@example.com")

	challenge, err := engine.BeginLogin(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("BeginLogin failed: %v", err)
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.ConfirmLogin(ctx, challenge.AccountID, challenge.LoginCode)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// The losing racer retries after the version conflict, observes the
	// cleared code, and reports nothing pending.
	var successes, noPending int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNoPendingCode):
			noPending++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || noPending != 1 {
		t.Fatalf("expected one success and one no-pending, got %d successes and %d no-pending", successes, noPending)
	}
}

func TestConfirmLoginUnknownAccount(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	_, err := engine.ConfirmLogin(context.Background(), "no-such-id", "123456")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestProfilePayloadNeverCarriesSecrets(t *testing.T) {
	engine, done := newTestEngine(t, testConfig())
	defer done()

	ctx := context.Background()
	loginReadyAccount(t, engine, "alice@example.com")

	challenge, err := engine.BeginLogin(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("BeginLogin failed: %v", err)
	}
	out, err := engine.ConfirmLogin(ctx, challenge.AccountID, challenge.LoginCode)
	if err != nil {
		t.Fatalf("ConfirmLogin failed: %v", err)
	}

	acct, err := engine.store.GetByID(ctx, challenge.AccountID)
	if err != nil {
		t.Fatalf("store lookup failed: %v", err)
	}

	rawBytes, err := json.Marshal(out.Profile)
	if err != nil {
		t.Fatalf("marshal profile failed: %v", err)
	}
	raw := string(rawBytes)
	for _, secret := range []string{acct.PasswordHash, challenge.LoginCode} {
		if secret != "" && strings.Contains(raw, secret) {
			t.Fatalf("profile payload leaked secret material: %s", raw)
		}
	}
	for _, field := range []string{"passwordHash", "confirmationCode", "loginCode"} {
		if strings.Contains(raw, field) {
			t.Fatalf("profile payload exposes field %s: %s", field, raw)
		}
	}
}
