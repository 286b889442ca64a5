package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/internal/domain/student"
)

func newStudentFixture(t *testing.T) (*StudentService, *memStudentStore, *memStudentCache) {
	t.Helper()
	store := newMemStudentStore()
	cache := newMemStudentCache()
	return NewStudentService(store, cache, testLogger()), store, cache
}

func TestStudentCreate_MirrorsIntoCache(t *testing.T) {
	svc, _, cache := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	mirrored, ok := cache.mirrors[created.ID]
	require.True(t, ok)
	assert.Equal(t, "Marie", mirrored.FirstName)
	assert.Equal(t, created.ID, cache.pointers["+33612345678"])
}

func TestStudentCreate_RejectsInvalidFields(t *testing.T) {
	svc, store, _ := newStudentFixture(t)

	_, err := svc.Create(context.Background(), student.New("", "Dupont", "+33612345678", "B2"))
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, store.byID)
}

func TestStudentCreate_DuplicatePhone(t *testing.T) {
	svc, _, _ := newStudentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, student.New("Paul", "Martin", "+33612345678", "B1"))
	assert.ErrorIs(t, err, shared.ErrDuplicateKey)
}

func TestStudentCreate_SucceedsWhenCacheDown(t *testing.T) {
	svc, store, cache := newStudentFixture(t)
	cache.fail = true

	created, err := svc.Create(context.Background(), student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)
	assert.Contains(t, store.byID, created.ID)
}

func TestStudentGet_CacheHitSkipsStore(t *testing.T) {
	svc, store, _ := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)

	// Mirror is populated, so a dead store must not matter.
	store.fail = true

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestStudentGet_MissRepopulatesMirror(t *testing.T) {
	svc, _, cache := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)

	// Simulate eviction.
	delete(cache.mirrors, created.ID)
	delete(cache.pointers, created.Phone)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Contains(t, cache.mirrors, created.ID)
	assert.Equal(t, created.ID, cache.pointers[created.Phone])
}

func TestStudentGet_NotFound(t *testing.T) {
	svc, _, _ := newStudentFixture(t)

	_, err := svc.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStudentGetByPhone_DanglingPointerFallsBack(t *testing.T) {
	svc, _, cache := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)

	// Pointer survives, mirror evicted.
	delete(cache.mirrors, created.ID)

	got, err := svc.GetByPhone(ctx, "+33612345678")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Contains(t, cache.mirrors, created.ID)
}

func TestStudentGetByPhone_CacheDownFallsBack(t *testing.T) {
	svc, _, cache := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)

	cache.fail = true

	got, err := svc.GetByPhone(ctx, "+33612345678")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestStudentSave_RequiresPersistedID(t *testing.T) {
	svc, _, _ := newStudentFixture(t)

	err := svc.Save(context.Background(), student.New("Marie", "Dupont", "+33612345678", "B2"))
	assert.ErrorIs(t, err, shared.ErrStudentNotPersisted)
}

func TestStudentSave_PhoneChangeDropsStalePointer(t *testing.T) {
	svc, _, cache := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33611111111", "B2"))
	require.NoError(t, err)

	created.Phone = "+33622222222"
	require.NoError(t, svc.Save(ctx, created))

	_, stale := cache.pointers["+33611111111"]
	assert.False(t, stale)
	assert.Equal(t, created.ID, cache.pointers["+33622222222"])
}

func TestStudentSave_UpdatesMirror(t *testing.T) {
	svc, _, cache := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)

	require.NoError(t, created.SetGrade("math", 15))
	require.NoError(t, svc.Save(ctx, created))

	assert.Equal(t, 15.0, cache.mirrors[created.ID].Grades["math"])
}

func TestStudentRemove_DropsMirrorAndPointer(t *testing.T) {
	svc, store, cache := newStudentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33612345678", "B2"))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, created.ID))

	assert.Empty(t, store.byID)
	assert.NotContains(t, cache.mirrors, created.ID)
	assert.NotContains(t, cache.pointers, created.Phone)
}

func TestStudentRemove_NotFound(t *testing.T) {
	svc, _, _ := newStudentFixture(t)

	err := svc.Remove(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStudentListByClass(t *testing.T) {
	svc, _, _ := newStudentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33611111111", "B2"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, student.New("Paul", "Martin", "+33622222222", "B1"))
	require.NoError(t, err)

	got, err := svc.ListByClass(ctx, "B2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Marie", got[0].FirstName)
}

func TestStudentRankByMean(t *testing.T) {
	svc, _, _ := newStudentFixture(t)
	ctx := context.Background()

	a := student.New("Marie", "Dupont", "+33611111111", "B2")
	require.NoError(t, a.SetGrade("math", 12))
	require.NoError(t, a.SetGrade("bio", 16))
	_, err := svc.Create(ctx, a)
	require.NoError(t, err)

	b := student.New("Paul", "Martin", "+33622222222", "B2")
	require.NoError(t, b.SetGrade("math", 18))
	_, err = svc.Create(ctx, b)
	require.NoError(t, err)

	ranked, err := svc.RankByMean(ctx)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Martin", ranked[0].LastName)
	assert.Equal(t, 14.0, ranked[1].Mean())
}

func TestStudentTopStudents_ClampsToPopulation(t *testing.T) {
	svc, _, _ := newStudentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, student.New("Marie", "Dupont", "+33611111111", "B2"))
	require.NoError(t, err)

	top, err := svc.TopStudents(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	none, err := svc.TopStudents(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStudentClassMean(t *testing.T) {
	svc, _, _ := newStudentFixture(t)
	ctx := context.Background()

	a := student.New("Marie", "Dupont", "+33611111111", "B2")
	require.NoError(t, a.SetGrade("math", 10))
	_, err := svc.Create(ctx, a)
	require.NoError(t, err)

	b := student.New("Paul", "Martin", "+33622222222", "B2")
	require.NoError(t, b.SetGrade("math", 14))
	_, err = svc.Create(ctx, b)
	require.NoError(t, err)

	mean, err := svc.ClassMean(ctx, "B2")
	require.NoError(t, err)
	assert.Equal(t, 12.0, mean)

	empty, err := svc.ClassMean(ctx, "Z9")
	require.NoError(t, err)
	assert.Zero(t, empty)
}
