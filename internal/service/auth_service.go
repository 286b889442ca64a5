package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/student-records/internal/domain/session"
	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/pkg/logger"
	"github.com/campus-hub/student-records/pkg/passhash"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTH SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// AuthService authenticates accounts and manages their sessions.
// Sessions live only in the cache-backed session store; losing the cache
// logs everyone out, nothing more. Expiry is absolute and enforced
// lazily: an expired record is detected and deleted on the read that
// finds it, with the store's own TTL as backstop for records never read
// again.
type AuthService struct {
	accounts *AccountService
	sessions session.Store
	hasher   passhash.Hasher
	log      *logger.Logger

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts *AccountService, sessions session.Store, hasher passhash.Hasher, log *logger.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		log:      log.With(logger.Component("auth_service")),
		now:      time.Now,
	}
}

// Authenticate verifies the credentials and opens a new session. An
// unknown username and a wrong password both come back as
// ErrBadCredentials so the response never reveals which part failed.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*session.Session, error) {
	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrBadCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, a.PasswordHash) {
		s.log.Warn("failed login attempt", logger.Username(username))
		return nil, shared.ErrBadCredentials
	}

	now := s.now().UTC()
	sess := &session.Session{
		Token: uuid.NewString(),
		Subject: session.Subject{
			AccountID: a.ID,
			Username:  a.Username,
			Role:      a.Role,
		},
		IssuedAt:  now,
		ExpiresAt: now.Add(session.TTL),
	}

	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, shared.WrapError("session", "Authenticate", shared.ErrStoreUnavailable, "session write failed", err)
	}

	s.log.Info("session opened",
		logger.AccountID(a.ID),
		logger.Username(a.Username),
		logger.Time("expires_at", sess.ExpiresAt),
	)

	return sess, nil
}

// Validate resolves a token to its live session. An absent record is
// ErrSessionNotFound; a present but expired record is deleted on the
// spot and reported as ErrSessionExpired.
func (s *AuthService) Validate(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if isMiss(err) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, shared.WrapError("session", "Validate", shared.ErrStoreUnavailable, "session read failed", err)
	}

	if sess.ExpiredAt(s.now().UTC()) {
		if derr := s.sessions.Delete(ctx, token); derr != nil {
			s.log.Warn("expired session delete failed", logger.Err(derr))
		}
		return nil, shared.ErrSessionExpired
	}

	return sess, nil
}

// Revoke closes a session. Revoking an unknown or already-expired token
// succeeds: the end state is identical.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return shared.WrapError("session", "Revoke", shared.ErrStoreUnavailable, "session delete failed", err)
	}

	s.log.Info("session revoked")

	return nil
}
