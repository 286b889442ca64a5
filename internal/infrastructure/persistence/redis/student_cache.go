package redis

import (
	"context"
	"time"

	"github.com/campus-hub/student-records/internal/domain/student"
)

// StudentCache implements student.Cache backed by Redis: a JSON mirror
// per student id plus a plain-string pointer per phone number.
type StudentCache struct {
	cache *Cache
}

// NewStudentCache creates a new StudentCache.
func NewStudentCache(cache *Cache) *StudentCache {
	return &StudentCache{cache: cache}
}

// Get returns the cached mirror for an id, or shared.ErrCacheMiss.
func (c *StudentCache) Get(ctx context.Context, id string) (*student.Student, error) {
	var s student.Student
	if err := c.cache.Get(ctx, StudentKey(id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Set writes the entity mirror.
func (c *StudentCache) Set(ctx context.Context, s *student.Student, ttl time.Duration) error {
	return c.cache.Set(ctx, StudentKey(s.ID), s, ttl)
}

// Delete removes the entity mirror.
func (c *StudentCache) Delete(ctx context.Context, id string) error {
	return c.cache.Delete(ctx, StudentKey(id))
}

// ResolvePhone returns the id the phone pointer resolves to, or
// shared.ErrCacheMiss.
func (c *StudentCache) ResolvePhone(ctx context.Context, phone string) (string, error) {
	return c.cache.GetString(ctx, StudentPhoneKey(phone))
}

// SetPhonePointer writes the phone -> id pointer.
func (c *StudentCache) SetPhonePointer(ctx context.Context, phone, id string, ttl time.Duration) error {
	return c.cache.SetString(ctx, StudentPhoneKey(phone), id, ttl)
}

// DeletePhonePointer removes the phone pointer.
func (c *StudentCache) DeletePhonePointer(ctx context.Context, phone string) error {
	return c.cache.Delete(ctx, StudentPhoneKey(phone))
}
