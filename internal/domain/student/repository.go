package student

import (
	"context"
	"time"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORAGE CONTRACTS
// The durable store is the single source of truth; the cache is a strict
// accelerator. Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Store defines the durable store adapter for students.
type Store interface {
	// Insert persists a new student and returns the store-assigned id.
	// Returns ErrPhoneTaken if the phone number is already registered.
	Insert(ctx context.Context, s *Student) (string, error)

	// GetByID returns a student by id.
	// Returns ErrStudentNotFound if no row matches.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByPhone returns a student by phone number.
	// Returns ErrStudentNotFound if no row matches.
	GetByPhone(ctx context.Context, phone string) (*Student, error)

	// Update overwrites the full attribute set of an existing student.
	// Returns ErrStudentNotFound if no row matches the id.
	Update(ctx context.Context, s *Student) error

	// Delete removes a student by id.
	// Returns ErrStudentNotFound if no row matches.
	Delete(ctx context.Context, id string) error

	// Query returns students matching all filters, in storage-defined
	// order. An empty filter list returns all students.
	Query(ctx context.Context, filters []shared.Filter) ([]*Student, error)
}

// Cache defines the ephemeral cache adapter for students: entity mirrors
// keyed by id plus phone-number pointers resolving to ids. Absence of a
// cache entry is never an error condition for callers; a miss is
// reported as shared.ErrCacheMiss and always falls back to the store.
type Cache interface {
	// Get returns the cached mirror for an id, or shared.ErrCacheMiss.
	Get(ctx context.Context, id string) (*Student, error)

	// Set writes the entity mirror.
	Set(ctx context.Context, s *Student, ttl time.Duration) error

	// Delete removes the entity mirror.
	Delete(ctx context.Context, id string) error

	// ResolvePhone returns the id the phone pointer resolves to, or
	// shared.ErrCacheMiss.
	ResolvePhone(ctx context.Context, phone string) (string, error)

	// SetPhonePointer writes the phone -> id pointer.
	SetPhonePointer(ctx context.Context, phone, id string, ttl time.Duration) error

	// DeletePhonePointer removes the phone pointer.
	DeletePhonePointer(ctx context.Context, phone string) error
}
