// Package service contains the application services that orchestrate the
// durable store and the ephemeral cache. The rules are uniform across
// entity kinds: the durable store is written first and is the source of
// truth; cache writes are best-effort and their failures are logged,
// never surfaced; a cache miss always falls back to the durable store.
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/internal/domain/student"
	"github.com/campus-hub/student-records/pkg/logger"
)

// mirrorTTL bounds the lifetime of entity mirrors and secondary-key
// pointers. Mirrors repopulate on the next read miss.
const mirrorTTL = 10 * time.Minute

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// StudentService manages student records across the durable store and
// the cache mirror.
type StudentService struct {
	store student.Store
	cache student.Cache
	log   *logger.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(store student.Store, cache student.Cache, log *logger.Logger) *StudentService {
	return &StudentService{
		store: store,
		cache: cache,
		log:   log.With(logger.Component("student_service")),
	}
}

// Create validates and persists a new student, then mirrors it into the
// cache. Returns the persisted student carrying its store-assigned id.
func (s *StudentService) Create(ctx context.Context, st *student.Student) (*student.Student, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}

	id, err := s.store.Insert(ctx, st)
	if err != nil {
		return nil, err
	}

	// Re-read so the returned entity carries store-assigned timestamps.
	created, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, created)

	s.log.Info("student created",
		logger.StudentID(created.ID),
		logger.Class(created.Class),
	)

	return created, nil
}

// Get returns a student by id: cache first, durable store on miss. A
// fresh read repopulates the mirror and the phone pointer.
func (s *StudentService) Get(ctx context.Context, id string) (*student.Student, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !isMiss(err) {
		s.log.Warn("student cache read failed", logger.StudentID(id), logger.Err(err))
	}

	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, st)

	return st, nil
}

// GetByPhone returns a student by phone number. The cache is consulted
// through the phone pointer; a dangling pointer (pointer present, mirror
// gone) degrades to a durable-store read, never to an error.
func (s *StudentService) GetByPhone(ctx context.Context, phone string) (*student.Student, error) {
	id, err := s.cache.ResolvePhone(ctx, phone)
	if err == nil {
		cached, cerr := s.cache.Get(ctx, id)
		if cerr == nil {
			return cached, nil
		}
		if !isMiss(cerr) {
			s.log.Warn("student cache read failed", logger.StudentID(id), logger.Err(cerr))
		}
	} else if !isMiss(err) {
		s.log.Warn("phone pointer read failed", logger.Phone(phone), logger.Err(err))
	}

	st, err := s.store.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, st)

	return st, nil
}

// Save overwrites the full attribute set of a persisted student: last
// writer wins. The old record is read first so that a changed phone
// number leaves no pointer resolving to the wrong student.
func (s *StudentService) Save(ctx context.Context, st *student.Student) error {
	if !st.IsPersisted() {
		return shared.ErrStudentNotPersisted
	}
	if err := st.Validate(); err != nil {
		return err
	}

	old, err := s.store.GetByID(ctx, st.ID)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, st); err != nil {
		return err
	}

	if old.Phone != st.Phone {
		if err := s.cache.DeletePhonePointer(ctx, old.Phone); err != nil {
			s.log.Warn("stale phone pointer delete failed", logger.Phone(old.Phone), logger.Err(err))
		}
	}

	// Mirror the stored record, not the caller's copy, so the cache
	// carries the store-assigned timestamps.
	if updated, rerr := s.store.GetByID(ctx, st.ID); rerr == nil {
		s.mirror(ctx, updated)
	} else {
		s.log.Warn("post-save read failed, mirror not refreshed", logger.StudentID(st.ID), logger.Err(rerr))
	}

	s.log.Info("student saved", logger.StudentID(st.ID))

	return nil
}

// Remove deletes a student from the durable store and drops its mirror
// and phone pointer from the cache.
func (s *StudentService) Remove(ctx context.Context, id string) error {
	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("student mirror delete failed", logger.StudentID(id), logger.Err(err))
	}
	if err := s.cache.DeletePhonePointer(ctx, st.Phone); err != nil {
		s.log.Warn("phone pointer delete failed", logger.Phone(st.Phone), logger.Err(err))
	}

	s.log.Info("student removed", logger.StudentID(id))

	return nil
}

// Query returns students matching all filters. Query results are served
// from the durable store only and are never cached.
func (s *StudentService) Query(ctx context.Context, filters []shared.Filter) ([]*student.Student, error) {
	return s.store.Query(ctx, filters)
}

// List returns all students.
func (s *StudentService) List(ctx context.Context) ([]*student.Student, error) {
	return s.store.Query(ctx, nil)
}

// ListByClass returns all students of one class.
func (s *StudentService) ListByClass(ctx context.Context, class string) ([]*student.Student, error) {
	return s.store.Query(ctx, []shared.Filter{shared.Equals("class", class)})
}

// SearchByLastName returns students whose last name contains the given
// substring, case-insensitively.
func (s *StudentService) SearchByLastName(ctx context.Context, substr string) ([]*student.Student, error) {
	return s.store.Query(ctx, []shared.Filter{shared.ContainsCI("last_name", substr)})
}

// ─────────────────────────────────────────────────────────────────────────────
// Derived statistics
// ─────────────────────────────────────────────────────────────────────────────

// RankByMean returns all students sorted by descending grade mean.
// Students with equal means keep a stable order by last name then id.
func (s *StudentService) RankByMean(ctx context.Context) ([]*student.Student, error) {
	students, err := s.store.Query(ctx, nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(students, func(i, j int) bool {
		mi, mj := students[i].Mean(), students[j].Mean()
		if mi != mj {
			return mi > mj
		}
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].ID < students[j].ID
	})

	return students, nil
}

// TopStudents returns the n best-ranked students by grade mean.
func (s *StudentService) TopStudents(ctx context.Context, n int) ([]*student.Student, error) {
	if n <= 0 {
		return nil, nil
	}

	ranked, err := s.RankByMean(ctx)
	if err != nil {
		return nil, err
	}

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n], nil
}

// ClassMean returns the mean of the grade means of one class. A class
// with no students (or only students without grades counted as 0) is
// reported as 0.
func (s *StudentService) ClassMean(ctx context.Context, class string) (float64, error) {
	students, err := s.ListByClass(ctx, class)
	if err != nil {
		return 0, err
	}
	if len(students) == 0 {
		return 0, nil
	}

	var sum float64
	for _, st := range students {
		sum += st.Mean()
	}
	return sum / float64(len(students)), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// mirror writes the entity mirror and the phone pointer. Failures are
// logged and swallowed: the durable write already succeeded and the
// mirror self-heals on the next read miss.
func (s *StudentService) mirror(ctx context.Context, st *student.Student) {
	if err := s.cache.Set(ctx, st, mirrorTTL); err != nil {
		s.log.Warn("student mirror write failed", logger.StudentID(st.ID), logger.Err(err))
		return
	}
	if err := s.cache.SetPhonePointer(ctx, st.Phone, st.ID, mirrorTTL); err != nil {
		s.log.Warn("phone pointer write failed", logger.Phone(st.Phone), logger.Err(err))
	}
}

// isMiss reports whether a cache error is a plain miss.
func isMiss(err error) bool {
	return errors.Is(err, shared.ErrCacheMiss)
}
