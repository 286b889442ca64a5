package account

import (
	"context"
	"time"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

// Store defines the durable store adapter for accounts.
type Store interface {
	// Insert persists a new account and returns the store-assigned id.
	// Returns ErrUsernameTaken if the username is already registered.
	Insert(ctx context.Context, a *Account) (string, error)

	// GetByID returns an account by id.
	// Returns ErrAccountNotFound if no row matches.
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByUsername returns an account by username.
	// Returns ErrAccountNotFound if no row matches.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Update overwrites the full attribute set of an existing account.
	// Returns ErrAccountNotFound if no row matches the id.
	Update(ctx context.Context, a *Account) error

	// Delete removes an account by id.
	// Returns ErrAccountNotFound if no row matches.
	Delete(ctx context.Context, id string) error

	// Query returns accounts matching all filters, in storage-defined
	// order. An empty filter list returns all accounts.
	Query(ctx context.Context, filters []shared.Filter) ([]*Account, error)
}

// Cache defines the ephemeral cache adapter for accounts: entity mirrors
// keyed by id plus username pointers resolving to ids. A miss is
// reported as shared.ErrCacheMiss.
type Cache interface {
	// Get returns the cached mirror for an id, or shared.ErrCacheMiss.
	Get(ctx context.Context, id string) (*Account, error)

	// Set writes the entity mirror.
	Set(ctx context.Context, a *Account, ttl time.Duration) error

	// Delete removes the entity mirror.
	Delete(ctx context.Context, id string) error

	// ResolveUsername returns the id the username pointer resolves to,
	// or shared.ErrCacheMiss.
	ResolveUsername(ctx context.Context, username string) (string, error)

	// SetUsernamePointer writes the username -> id pointer.
	SetUsernamePointer(ctx context.Context, username, id string, ttl time.Duration) error

	// DeleteUsernamePointer removes the username pointer.
	DeleteUsernamePointer(ctx context.Context, username string) error
}
