package account

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	acct := testAccount("id-1", "alice@example.com")
	if err := store.Create(ctx, acct); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if acct.Version != 1 {
		t.Fatalf("expected version 1 after create, got %d", acct.Version)
	}

	if err := store.Create(ctx, testAccount("id-2", "alice@example.com")); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	byEmail, err := store.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}

	// Mutating the returned record must not leak into the store.
	byEmail.FullName = "scribbled"
	fresh, err := store.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fresh.FullName != "" {
		t.Fatal("store returned a shared record")
	}

	stale := fresh.Clone()
	fresh.Confirmed = true
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if fresh.Version != 2 {
		t.Fatalf("expected version 2 after update, got %d", fresh.Version)
	}

	stale.FullName = "Stale Writer"
	if err := store.Update(ctx, stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}
