// Package account contains the user account domain model and its storage
// contracts. Accounts carry the credential digest used by the session
// manager; the digest itself is an opaque value produced by pkg/passhash.
package account

import (
	"strings"
	"time"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROLE
// ══════════════════════════════════════════════════════════════════════════════

// Role determines what an account is allowed to do.
type Role string

const (
	// RoleAdmin manages accounts and all records.
	RoleAdmin Role = "admin"
	// RoleTeacher manages student records and grades.
	RoleTeacher Role = "teacher"
	// RoleStudent has read access to its own record.
	RoleStudent Role = "student"
)

// IsValid checks that the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ACCOUNT
// ══════════════════════════════════════════════════════════════════════════════

// Account represents a user of the system.
type Account struct {
	// ID is the store-assigned unique identifier (UUID in string form).
	// Empty before first persistence, immutable afterwards.
	ID string `json:"id"`

	// Username is the secondary lookup key, unique among all accounts.
	Username string `json:"username"`

	// Email is the account's contact address.
	Email string `json:"email"`

	// Role determines permissions.
	Role Role `json:"role"`

	// PasswordHash is the opaque credential digest. Never the clear
	// password.
	PasswordHash string `json:"password_hash"`

	// StudentID links a student-role account to its student record
	// (empty for staff accounts).
	StudentID string `json:"student_id,omitempty"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an account that has not been persisted yet (no ID, no
// credential digest).
func New(username, email string, role Role) *Account {
	return &Account{
		Username: username,
		Email:    email,
		Role:     role,
	}
}

// IsPersisted reports whether the account carries a store-assigned id.
func (a *Account) IsPersisted() bool {
	return a.ID != ""
}

// Validate checks the account's fields before any store call.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" || strings.TrimSpace(a.Email) == "" {
		return shared.ErrInvalidAccountFields
	}
	if !a.Role.IsValid() {
		return shared.ErrInvalidRole
	}
	return nil
}
