package account

import (
	"context"
	"errors"
)

// Account is the full persisted account record. ConfirmationCode and
// LoginCode are empty when no code is pending. LoginCodeExpiresAt and
// ConfirmationIssuedAt are unix seconds; zero means unset.
type Account struct {
	ID                   string
	Email                string
	PasswordHash         string
	Role                 string
	Confirmed            bool
	ConfirmationCode     string
	ConfirmationIssuedAt int64
	LoginCode            string
	LoginCodeExpiresAt   int64
	FullName             string
	School               string
	Major                string
	Classification       string
	ProfileComplete      bool
	Version              uint32
	CreatedAt            int64
}

// Clone returns a deep copy. Account contains only value fields, so a
// shallow copy suffices; the method exists so callers never share a record
// across goroutines by accident.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}

var (
	// ErrNotFound is an exported constant or variable used by the account store.
	ErrNotFound = errors.New("account record not found")
	// ErrDuplicateEmail is an exported constant or variable used by the account store.
	ErrDuplicateEmail = errors.New("account email already indexed")
	// ErrVersionConflict is an exported constant or variable used by the account store.
	ErrVersionConflict = errors.New("account version conflict")
	// ErrBackend is an exported constant or variable used by the account store.
	ErrBackend = errors.New("account backend unavailable")
)

// Store is the persistence contract for account records.
//
// Create must reserve the email atomically with record creation and return
// [ErrDuplicateEmail] when the address is already indexed. Update is a
// compare-and-swap on Account.Version: it succeeds only when the stored
// version equals the caller's, and increments the version on success (both
// in the store and on the passed record).
type Store interface {
	Create(ctx context.Context, acct *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, acct *Account) error
}
