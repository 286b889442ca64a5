package redis

import (
	"context"
	"time"

	"github.com/campus-hub/student-records/internal/domain/account"
)

// AccountCache implements account.Cache backed by Redis: a JSON mirror
// per account id plus a plain-string pointer per username.
type AccountCache struct {
	cache *Cache
}

// NewAccountCache creates a new AccountCache.
func NewAccountCache(cache *Cache) *AccountCache {
	return &AccountCache{cache: cache}
}

// Get returns the cached mirror for an id, or shared.ErrCacheMiss.
func (c *AccountCache) Get(ctx context.Context, id string) (*account.Account, error) {
	var a account.Account
	if err := c.cache.Get(ctx, AccountKey(id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Set writes the entity mirror.
func (c *AccountCache) Set(ctx context.Context, a *account.Account, ttl time.Duration) error {
	return c.cache.Set(ctx, AccountKey(a.ID), a, ttl)
}

// Delete removes the entity mirror.
func (c *AccountCache) Delete(ctx context.Context, id string) error {
	return c.cache.Delete(ctx, AccountKey(id))
}

// ResolveUsername returns the id the username pointer resolves to, or
// shared.ErrCacheMiss.
func (c *AccountCache) ResolveUsername(ctx context.Context, username string) (string, error) {
	return c.cache.GetString(ctx, AccountUsernameKey(username))
}

// SetUsernamePointer writes the username -> id pointer.
func (c *AccountCache) SetUsernamePointer(ctx context.Context, username, id string, ttl time.Duration) error {
	return c.cache.SetString(ctx, AccountUsernameKey(username), id, ttl)
}

// DeleteUsernamePointer removes the username pointer.
func (c *AccountCache) DeleteUsernamePointer(ctx context.Context, username string) error {
	return c.cache.Delete(ctx, AccountUsernameKey(username))
}
