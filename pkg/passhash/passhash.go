// Package passhash provides password hashing as an opaque capability:
// hash a clear password into a digest, verify a password against a
// digest. Callers never inspect the digest format.
package passhash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashFailed is returned when a digest cannot be computed.
var ErrHashFailed = errors.New("passhash: failed to hash password")

// Hasher computes and verifies credential digests.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// Bcrypt implements Hasher with bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt hasher. A cost outside bcrypt's valid range
// falls back to the library default.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Default returns a hasher with the default bcrypt cost.
func Default() *Bcrypt {
	return NewBcrypt(bcrypt.DefaultCost)
}

// Hash computes the digest for a clear password.
func (b *Bcrypt) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", ErrHashFailed
	}
	return string(digest), nil
}

// Verify reports whether the password matches the digest.
func (b *Bcrypt) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
