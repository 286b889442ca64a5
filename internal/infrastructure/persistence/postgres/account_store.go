package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/student-records/internal/domain/account"
	"github.com/campus-hub/student-records/internal/domain/shared"
)

// accountColumns whitelists the fields that query filters may reference.
// The credential digest is deliberately not queryable.
var accountColumns = map[string]string{
	"username": "username",
	"email":    "email",
	"role":     "role",
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AccountStore implements account.Store for PostgreSQL.
type AccountStore struct {
	conn *Connection
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(conn *Connection) *AccountStore {
	return &AccountStore{conn: conn}
}

// Insert persists a new account and returns the store-assigned id.
// Username uniqueness is checked up front; the UNIQUE constraint remains
// the arbiter for concurrent inserts.
func (r *AccountStore) Insert(ctx context.Context, a *account.Account) (string, error) {
	taken, err := r.usernameExists(ctx, a.Username)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.ErrUsernameTaken
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	query := `
		INSERT INTO accounts (id, username, email, role, password_hash, student_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.conn.Exec(ctx, query,
		id,
		a.Username,
		a.Email,
		string(a.Role),
		a.PasswordHash,
		nullable(a.StudentID),
		now,
		now,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return "", shared.ErrUsernameTaken
		}
		return "", shared.WrapError("account", "Insert", shared.ErrStoreUnavailable, "insert failed", err)
	}

	return id, nil
}

// GetByID returns an account by id.
func (r *AccountStore) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `
		SELECT id, username, email, role, password_hash, student_id, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanAccount(row)
}

// GetByUsername returns an account by username.
func (r *AccountStore) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	query := `
		SELECT id, username, email, role, password_hash, student_id, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`

	row := r.conn.QueryRow(ctx, query, username)
	return r.scanAccount(row)
}

// Update overwrites the full attribute set of an existing account.
// Last writer wins: there is no version check.
func (r *AccountStore) Update(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts SET
			username = $1,
			email = $2,
			role = $3,
			password_hash = $4,
			student_id = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		a.Username,
		a.Email,
		string(a.Role),
		a.PasswordHash,
		nullable(a.StudentID),
		time.Now().UTC(),
		a.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUsernameTaken
		}
		return shared.WrapError("account", "Update", shared.ErrStoreUnavailable, "update failed", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}

	return nil
}

// Delete removes an account by id.
func (r *AccountStore) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return shared.WrapError("account", "Delete", shared.ErrStoreUnavailable, "delete failed", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}

	return nil
}

// Query returns accounts matching all filters, in storage-defined order.
func (r *AccountStore) Query(ctx context.Context, filters []shared.Filter) ([]*account.Account, error) {
	where, args, err := buildWhere(filters, accountColumns)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, username, email, role, password_hash, student_id, created_at, updated_at
		FROM accounts
	` + where

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.WrapError("account", "Query", shared.ErrStoreUnavailable, "query failed", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("account", "Query", shared.ErrStoreUnavailable, "rows iteration failed", err)
	}

	return accounts, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *AccountStore) usernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)",
		username,
	).Scan(&exists)
	if err != nil {
		return false, shared.WrapError("account", "Insert", shared.ErrStoreUnavailable, "uniqueness check failed", err)
	}
	return exists, nil
}

func (r *AccountStore) scanAccount(row pgx.Row) (*account.Account, error) {
	a, err := scanAccountRow(row)
	if IsNoRows(err) {
		return nil, shared.ErrAccountNotFound
	}
	return a, err
}

func scanAccountRow(row pgx.Row) (*account.Account, error) {
	var a account.Account
	var role string
	var studentID *string

	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&role,
		&a.PasswordHash,
		&studentID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, err
	}
	if err != nil {
		return nil, shared.WrapError("account", "Get", shared.ErrStoreUnavailable, "scan failed", err)
	}

	a.Role = account.Role(role)
	if studentID != nil {
		a.StudentID = *studentID
	}

	return &a, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
