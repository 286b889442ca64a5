package service

import (
	"context"

	"github.com/campus-hub/student-records/internal/domain/account"
	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/pkg/logger"
	"github.com/campus-hub/student-records/pkg/passhash"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// AccountService manages user accounts. It mirrors the student service's
// dual-store discipline, with the username as the secondary key and the
// credential digest handled through the passhash capability. The clear
// password never reaches storage.
type AccountService struct {
	store  account.Store
	cache  account.Cache
	hasher passhash.Hasher
	log    *logger.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store account.Store, cache account.Cache, hasher passhash.Hasher, log *logger.Logger) *AccountService {
	return &AccountService{
		store:  store,
		cache:  cache,
		hasher: hasher,
		log:    log.With(logger.Component("account_service")),
	}
}

// Create validates the account, hashes the clear password into the
// credential digest, persists the account and mirrors it into the cache.
func (s *AccountService) Create(ctx context.Context, a *account.Account, password string) (*account.Account, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, shared.WrapError("account", "Create", shared.ErrEmptyValue, "password cannot be empty", nil)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, shared.WrapError("account", "Create", shared.ErrInvalidState, "failed to hash password", err)
	}
	a.PasswordHash = digest

	id, err := s.store.Insert(ctx, a)
	if err != nil {
		return nil, err
	}

	created, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, created)

	s.log.Info("account created",
		logger.AccountID(created.ID),
		logger.Username(created.Username),
		logger.String("role", created.Role.String()),
	)

	return created, nil
}

// Get returns an account by id: cache first, durable store on miss.
func (s *AccountService) Get(ctx context.Context, id string) (*account.Account, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !isMiss(err) {
		s.log.Warn("account cache read failed", logger.AccountID(id), logger.Err(err))
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, a)

	return a, nil
}

// GetByUsername returns an account by username via the cache pointer,
// falling back to the durable store on any miss.
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	id, err := s.cache.ResolveUsername(ctx, username)
	if err == nil {
		cached, cerr := s.cache.Get(ctx, id)
		if cerr == nil {
			return cached, nil
		}
		if !isMiss(cerr) {
			s.log.Warn("account cache read failed", logger.AccountID(id), logger.Err(cerr))
		}
	} else if !isMiss(err) {
		s.log.Warn("username pointer read failed", logger.Username(username), logger.Err(err))
	}

	a, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, a)

	return a, nil
}

// Save overwrites the full attribute set of a persisted account. A
// changed username drops the old pointer before the new one is written.
func (s *AccountService) Save(ctx context.Context, a *account.Account) error {
	if !a.IsPersisted() {
		return shared.ErrAccountNotPersisted
	}
	if err := a.Validate(); err != nil {
		return err
	}

	old, err := s.store.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, a); err != nil {
		return err
	}

	if old.Username != a.Username {
		if err := s.cache.DeleteUsernamePointer(ctx, old.Username); err != nil {
			s.log.Warn("stale username pointer delete failed", logger.Username(old.Username), logger.Err(err))
		}
	}

	// Mirror the stored record, not the caller's copy.
	if updated, rerr := s.store.GetByID(ctx, a.ID); rerr == nil {
		s.mirror(ctx, updated)
	} else {
		s.log.Warn("post-save read failed, mirror not refreshed", logger.AccountID(a.ID), logger.Err(rerr))
	}

	s.log.Info("account saved", logger.AccountID(a.ID))

	return nil
}

// ChangePassword replaces the credential digest of a persisted account.
func (s *AccountService) ChangePassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return shared.WrapError("account", "ChangePassword", shared.ErrEmptyValue, "password cannot be empty", nil)
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return shared.WrapError("account", "ChangePassword", shared.ErrInvalidState, "failed to hash password", err)
	}
	a.PasswordHash = digest

	if err := s.store.Update(ctx, a); err != nil {
		return err
	}

	if updated, rerr := s.store.GetByID(ctx, id); rerr == nil {
		s.mirror(ctx, updated)
	} else {
		s.log.Warn("post-save read failed, mirror not refreshed", logger.AccountID(id), logger.Err(rerr))
	}

	s.log.Info("account password changed", logger.AccountID(id))

	return nil
}

// Remove deletes an account and drops its mirror and username pointer.
func (s *AccountService) Remove(ctx context.Context, id string) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("account mirror delete failed", logger.AccountID(id), logger.Err(err))
	}
	if err := s.cache.DeleteUsernamePointer(ctx, a.Username); err != nil {
		s.log.Warn("username pointer delete failed", logger.Username(a.Username), logger.Err(err))
	}

	s.log.Info("account removed", logger.AccountID(id))

	return nil
}

// Query returns accounts matching all filters, from the durable store
// only.
func (s *AccountService) Query(ctx context.Context, filters []shared.Filter) ([]*account.Account, error) {
	return s.store.Query(ctx, filters)
}

// List returns all accounts.
func (s *AccountService) List(ctx context.Context) ([]*account.Account, error) {
	return s.store.Query(ctx, nil)
}

// ListByRole returns all accounts with the given role.
func (s *AccountService) ListByRole(ctx context.Context, role account.Role) ([]*account.Account, error) {
	return s.store.Query(ctx, []shared.Filter{shared.Equals("role", role.String())})
}

// mirror writes the entity mirror and the username pointer, best effort.
func (s *AccountService) mirror(ctx context.Context, a *account.Account) {
	if err := s.cache.Set(ctx, a, mirrorTTL); err != nil {
		s.log.Warn("account mirror write failed", logger.AccountID(a.ID), logger.Err(err))
		return
	}
	if err := s.cache.SetUsernamePointer(ctx, a.Username, a.ID, mirrorTTL); err != nil {
		s.log.Warn("username pointer write failed", logger.Username(a.Username), logger.Err(err))
	}
}
