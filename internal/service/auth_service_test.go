package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/student-records/internal/domain/account"
	"github.com/campus-hub/student-records/internal/domain/session"
	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/pkg/passhash"
)

func newAuthFixture(t *testing.T) (*AuthService, *AccountService, *memSessionStore) {
	t.Helper()
	hasher := passhash.NewBcrypt(4)
	accounts := NewAccountService(newMemAccountStore(), newMemAccountCache(), hasher, testLogger())
	sessions := newMemSessionStore()
	return NewAuthService(accounts, sessions, hasher, testLogger()), accounts, sessions
}

func seedAccount(t *testing.T, accounts *AccountService) *account.Account {
	t.Helper()
	a, err := accounts.Create(context.Background(),
		account.New("mdupont", "marie@example.org", account.RoleTeacher), "s3cret")
	require.NoError(t, err)
	return a
}

func TestAuthenticate_OpensSession(t *testing.T) {
	auth, accounts, sessions := newAuthFixture(t)
	a := seedAccount(t, accounts)

	sess, err := auth.Authenticate(context.Background(), "mdupont", "s3cret")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, a.ID, sess.Subject.AccountID)
	assert.Equal(t, account.RoleTeacher, sess.Subject.Role)
	assert.Equal(t, sess.IssuedAt.Add(session.TTL), sess.ExpiresAt)
	assert.Contains(t, sessions.byToken, sess.Token)
}

func TestAuthenticate_FreshTokenPerLogin(t *testing.T) {
	auth, accounts, _ := newAuthFixture(t)
	seedAccount(t, accounts)
	ctx := context.Background()

	s1, err := auth.Authenticate(ctx, "mdupont", "s3cret")
	require.NoError(t, err)
	s2, err := auth.Authenticate(ctx, "mdupont", "s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, s1.Token, s2.Token)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	auth, accounts, sessions := newAuthFixture(t)
	seedAccount(t, accounts)

	_, err := auth.Authenticate(context.Background(), "mdupont", "wrong")
	assert.ErrorIs(t, err, shared.ErrBadCredentials)
	assert.Empty(t, sessions.byToken)
}

func TestAuthenticate_UnknownUsernameLooksIdentical(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.Authenticate(context.Background(), "nobody", "s3cret")
	assert.ErrorIs(t, err, shared.ErrBadCredentials)
}

func TestValidate_LiveSession(t *testing.T) {
	auth, accounts, _ := newAuthFixture(t)
	seedAccount(t, accounts)
	ctx := context.Background()

	sess, err := auth.Authenticate(ctx, "mdupont", "s3cret")
	require.NoError(t, err)

	got, err := auth.Validate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Subject, got.Subject)
}

func TestValidate_UnknownToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.Validate(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestValidate_ExpiredSessionIsDeleted(t *testing.T) {
	auth, accounts, sessions := newAuthFixture(t)
	seedAccount(t, accounts)
	ctx := context.Background()

	sess, err := auth.Authenticate(ctx, "mdupont", "s3cret")
	require.NoError(t, err)

	// Jump past the absolute expiry.
	auth.now = func() time.Time { return sess.ExpiresAt.Add(time.Minute) }

	_, err = auth.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, shared.ErrExpired)
	assert.NotContains(t, sessions.byToken, sess.Token)
}

func TestValidate_ExpiryIsAbsoluteNotSliding(t *testing.T) {
	auth, accounts, _ := newAuthFixture(t)
	seedAccount(t, accounts)
	ctx := context.Background()

	sess, err := auth.Authenticate(ctx, "mdupont", "s3cret")
	require.NoError(t, err)

	// Repeated validation must not push the expiry out.
	auth.now = func() time.Time { return sess.ExpiresAt.Add(-time.Minute) }
	for i := 0; i < 3; i++ {
		_, err := auth.Validate(ctx, sess.Token)
		require.NoError(t, err)
	}

	auth.now = func() time.Time { return sess.ExpiresAt }
	_, err = auth.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, shared.ErrExpired)
}

func TestRevoke_Idempotent(t *testing.T) {
	auth, accounts, sessions := newAuthFixture(t)
	seedAccount(t, accounts)
	ctx := context.Background()

	sess, err := auth.Authenticate(ctx, "mdupont", "s3cret")
	require.NoError(t, err)

	require.NoError(t, auth.Revoke(ctx, sess.Token))
	assert.Empty(t, sessions.byToken)

	// Second revoke of the same token and revoke of a token that never
	// existed both succeed.
	require.NoError(t, auth.Revoke(ctx, sess.Token))
	require.NoError(t, auth.Revoke(ctx, "no-such-token"))

	_, err = auth.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthenticate_SessionStoreDown(t *testing.T) {
	auth, accounts, sessions := newAuthFixture(t)
	seedAccount(t, accounts)
	sessions.fail = true

	_, err := auth.Authenticate(context.Background(), "mdupont", "s3cret")
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
}
