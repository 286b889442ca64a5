// Package session contains the authentication session model. Sessions
// live exclusively in the ephemeral cache: they are never written to the
// durable store.
package session

import (
	"context"
	"time"

	"github.com/campus-hub/student-records/internal/domain/account"
)

// TTL is the fixed session lifetime. Expiry is absolute, fixed at
// creation and never extended by activity.
const TTL = 24 * time.Hour

// Subject is the identity snapshot taken at authentication time. It is
// not re-resolved per request: a role change takes effect on the next
// login.
type Subject struct {
	AccountID string       `json:"account_id"`
	Username  string       `json:"username"`
	Role      account.Role `json:"role"`
}

// Session is a single authenticated session bound to an opaque token.
type Session struct {
	// Token is the opaque unique identifier, generated fresh per
	// successful authentication.
	Token string `json:"token"`

	// Subject identifies who authenticated.
	Subject Subject `json:"subject"`

	// IssuedAt is when the session was created.
	IssuedAt time.Time `json:"issued_at"`

	// ExpiresAt is the absolute expiration timestamp (IssuedAt + TTL).
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the session is expired at the given instant.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store defines the cache-backed session store. Records are always
// written with the fixed TTL so the cache's own expiration reclaims
// them even if they are never read again.
type Store interface {
	// Put writes the session record under its token with the fixed TTL.
	Put(ctx context.Context, s *Session) error

	// Get returns the session for a token, or shared.ErrCacheMiss if
	// the record is absent (never stored or already reclaimed).
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes the session record. Deleting an absent token is
	// not an error.
	Delete(ctx context.Context, token string) error
}
