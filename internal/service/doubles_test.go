package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/student-records/internal/domain/account"
	"github.com/campus-hub/student-records/internal/domain/session"
	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/internal/domain/student"
	"github.com/campus-hub/student-records/pkg/logger"
)

// errBoom is the injected fault for unavailable-backend scenarios.
var errBoom = errors.New("boom")

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: discard{}, Level: logger.LevelFatal})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// ─────────────────────────────────────────────────────────────────────────────
// Student doubles
// ─────────────────────────────────────────────────────────────────────────────

type memStudentStore struct {
	byID map[string]*student.Student
	fail bool
}

func newMemStudentStore() *memStudentStore {
	return &memStudentStore{byID: make(map[string]*student.Student)}
}

func (m *memStudentStore) Insert(_ context.Context, s *student.Student) (string, error) {
	if m.fail {
		return "", errBoom
	}
	for _, existing := range m.byID {
		if existing.Phone == s.Phone {
			return "", shared.ErrPhoneTaken
		}
	}
	cp := s.Clone()
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[cp.ID] = cp
	return cp.ID, nil
}

func (m *memStudentStore) GetByID(_ context.Context, id string) (*student.Student, error) {
	if m.fail {
		return nil, errBoom
	}
	s, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (m *memStudentStore) GetByPhone(_ context.Context, phone string) (*student.Student, error) {
	if m.fail {
		return nil, errBoom
	}
	for _, s := range m.byID {
		if s.Phone == phone {
			return s.Clone(), nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (m *memStudentStore) Update(_ context.Context, s *student.Student) error {
	if m.fail {
		return errBoom
	}
	if _, ok := m.byID[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	cp := s.Clone()
	cp.UpdatedAt = time.Now().UTC()
	m.byID[s.ID] = cp
	return nil
}

func (m *memStudentStore) Delete(_ context.Context, id string) error {
	if m.fail {
		return errBoom
	}
	if _, ok := m.byID[id]; !ok {
		return shared.ErrStudentNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStudentStore) Query(_ context.Context, filters []shared.Filter) ([]*student.Student, error) {
	if m.fail {
		return nil, errBoom
	}
	var out []*student.Student
	for _, s := range m.byID {
		if matchStudent(s, filters) {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func matchStudent(s *student.Student, filters []shared.Filter) bool {
	fields := map[string]string{
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"phone":      s.Phone,
		"class":      s.Class,
	}
	return matchFields(fields, filters)
}

func matchFields(fields map[string]string, filters []shared.Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case shared.OpEquals:
			if v != f.Value {
				return false
			}
		case shared.OpContainsCI:
			if !strings.Contains(strings.ToLower(v), strings.ToLower(f.Value)) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type memStudentCache struct {
	mirrors  map[string]*student.Student
	pointers map[string]string
	fail     bool
}

func newMemStudentCache() *memStudentCache {
	return &memStudentCache{
		mirrors:  make(map[string]*student.Student),
		pointers: make(map[string]string),
	}
}

func (m *memStudentCache) Get(_ context.Context, id string) (*student.Student, error) {
	if m.fail {
		return nil, errBoom
	}
	s, ok := m.mirrors[id]
	if !ok {
		return nil, shared.ErrCacheMiss
	}
	return s.Clone(), nil
}

func (m *memStudentCache) Set(_ context.Context, s *student.Student, _ time.Duration) error {
	if m.fail {
		return errBoom
	}
	m.mirrors[s.ID] = s.Clone()
	return nil
}

func (m *memStudentCache) Delete(_ context.Context, id string) error {
	if m.fail {
		return errBoom
	}
	delete(m.mirrors, id)
	return nil
}

func (m *memStudentCache) ResolvePhone(_ context.Context, phone string) (string, error) {
	if m.fail {
		return "", errBoom
	}
	id, ok := m.pointers[phone]
	if !ok {
		return "", shared.ErrCacheMiss
	}
	return id, nil
}

func (m *memStudentCache) SetPhonePointer(_ context.Context, phone, id string, _ time.Duration) error {
	if m.fail {
		return errBoom
	}
	m.pointers[phone] = id
	return nil
}

func (m *memStudentCache) DeletePhonePointer(_ context.Context, phone string) error {
	if m.fail {
		return errBoom
	}
	delete(m.pointers, phone)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Account doubles
// ─────────────────────────────────────────────────────────────────────────────

type memAccountStore struct {
	byID map[string]*account.Account
	fail bool
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{byID: make(map[string]*account.Account)}
}

func (m *memAccountStore) Insert(_ context.Context, a *account.Account) (string, error) {
	if m.fail {
		return "", errBoom
	}
	for _, existing := range m.byID {
		if existing.Username == a.Username {
			return "", shared.ErrUsernameTaken
		}
	}
	cp := *a
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memAccountStore) GetByID(_ context.Context, id string) (*account.Account, error) {
	if m.fail {
		return nil, errBoom
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountStore) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	if m.fail {
		return nil, errBoom
	}
	for _, a := range m.byID {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shared.ErrAccountNotFound
}

func (m *memAccountStore) Update(_ context.Context, a *account.Account) error {
	if m.fail {
		return errBoom
	}
	if _, ok := m.byID[a.ID]; !ok {
		return shared.ErrAccountNotFound
	}
	cp := *a
	cp.UpdatedAt = time.Now().UTC()
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccountStore) Delete(_ context.Context, id string) error {
	if m.fail {
		return errBoom
	}
	if _, ok := m.byID[id]; !ok {
		return shared.ErrAccountNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memAccountStore) Query(_ context.Context, filters []shared.Filter) ([]*account.Account, error) {
	if m.fail {
		return nil, errBoom
	}
	var out []*account.Account
	for _, a := range m.byID {
		fields := map[string]string{
			"username": a.Username,
			"email":    a.Email,
			"role":     a.Role.String(),
		}
		if matchFields(fields, filters) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memAccountCache struct {
	mirrors  map[string]*account.Account
	pointers map[string]string
	fail     bool
}

func newMemAccountCache() *memAccountCache {
	return &memAccountCache{
		mirrors:  make(map[string]*account.Account),
		pointers: make(map[string]string),
	}
}

func (m *memAccountCache) Get(_ context.Context, id string) (*account.Account, error) {
	if m.fail {
		return nil, errBoom
	}
	a, ok := m.mirrors[id]
	if !ok {
		return nil, shared.ErrCacheMiss
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountCache) Set(_ context.Context, a *account.Account, _ time.Duration) error {
	if m.fail {
		return errBoom
	}
	cp := *a
	m.mirrors[a.ID] = &cp
	return nil
}

func (m *memAccountCache) Delete(_ context.Context, id string) error {
	if m.fail {
		return errBoom
	}
	delete(m.mirrors, id)
	return nil
}

func (m *memAccountCache) ResolveUsername(_ context.Context, username string) (string, error) {
	if m.fail {
		return "", errBoom
	}
	id, ok := m.pointers[username]
	if !ok {
		return "", shared.ErrCacheMiss
	}
	return id, nil
}

func (m *memAccountCache) SetUsernamePointer(_ context.Context, username, id string, _ time.Duration) error {
	if m.fail {
		return errBoom
	}
	m.pointers[username] = id
	return nil
}

func (m *memAccountCache) DeleteUsernamePointer(_ context.Context, username string) error {
	if m.fail {
		return errBoom
	}
	delete(m.pointers, username)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Session doubles
// ─────────────────────────────────────────────────────────────────────────────

type memSessionStore struct {
	byToken map[string]*session.Session
	fail    bool
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{byToken: make(map[string]*session.Session)}
}

func (m *memSessionStore) Put(_ context.Context, s *session.Session) error {
	if m.fail {
		return errBoom
	}
	cp := *s
	m.byToken[s.Token] = &cp
	return nil
}

func (m *memSessionStore) Get(_ context.Context, token string) (*session.Session, error) {
	if m.fail {
		return nil, errBoom
	}
	s, ok := m.byToken[token]
	if !ok {
		return nil, shared.ErrCacheMiss
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionStore) Delete(_ context.Context, token string) error {
	if m.fail {
		return errBoom
	}
	delete(m.byToken, token)
	return nil
}
