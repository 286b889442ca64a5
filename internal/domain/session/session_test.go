package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, TTL)
}

func TestExpiredAt(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{
		Token:     "tok",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(TTL),
	}

	assert.False(t, s.ExpiredAt(issued))
	assert.False(t, s.ExpiredAt(s.ExpiresAt.Add(-time.Second)))

	// Expiry is inclusive at the boundary.
	assert.True(t, s.ExpiredAt(s.ExpiresAt))
	assert.True(t, s.ExpiredAt(s.ExpiresAt.Add(time.Hour)))
}
