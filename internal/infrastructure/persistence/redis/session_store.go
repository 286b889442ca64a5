package redis

import (
	"context"

	"github.com/campus-hub/student-records/internal/domain/session"
)

// SessionStore implements session.Store backed by Redis. Sessions exist
// only here; there is no durable copy. Every record is written with the
// fixed session TTL as a second line of defense behind the
// application-level expiry check.
type SessionStore struct {
	cache *Cache
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(cache *Cache) *SessionStore {
	return &SessionStore{cache: cache}
}

// Put writes the session record under its token.
func (s *SessionStore) Put(ctx context.Context, sess *session.Session) error {
	return s.cache.Set(ctx, SessionKey(sess.Token), sess, TTLSession)
}

// Get returns the session for a token, or shared.ErrCacheMiss.
func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	var sess session.Session
	if err := s.cache.Get(ctx, SessionKey(token), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Delete removes the session record. Deleting an absent token is not an
// error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, SessionKey(token))
}
