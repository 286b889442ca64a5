// Package student contains the student domain model: the entity, its
// derived values, and the storage contracts implemented in
// infrastructure/persistence.
package student

import (
	"strings"
	"time"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

// Grade bounds. A grade outside this closed range fails validation and
// must never reach storage.
const (
	MinGrade = 0.0
	MaxGrade = 20.0
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is the central entity of the records system.
type Student struct {
	// ID is the store-assigned unique identifier (UUID in string form).
	// It is empty for a student that has not been persisted yet and
	// immutable afterwards.
	ID string `json:"id"`

	// FirstName is the student's given name.
	FirstName string `json:"first_name"`

	// LastName is the student's family name.
	LastName string `json:"last_name"`

	// Phone is the secondary lookup key, unique among all students.
	Phone string `json:"phone"`

	// Class is the class/group the student belongs to.
	Class string `json:"class"`

	// Grades maps subject name to grade in [0, 20].
	Grades map[string]float64 `json:"grades"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a student that has not been persisted yet (no ID).
func New(firstName, lastName, phone, class string) *Student {
	return &Student{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Class:     class,
		Grades:    make(map[string]float64),
	}
}

// IsPersisted reports whether the student carries a store-assigned id.
func (s *Student) IsPersisted() bool {
	return s.ID != ""
}

// Mean returns the mean of all grades. It is a derived value: never
// persisted, always recomputed from the grade map on read. An empty
// grade map yields 0.
func (s *Student) Mean() float64 {
	if len(s.Grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range s.Grades {
		sum += g
	}
	return sum / float64(len(s.Grades))
}

// SetGrade adds or replaces the grade for a subject.
// Returns ErrGradeOutOfRange if the grade is outside [0, 20].
func (s *Student) SetGrade(subject string, grade float64) error {
	if grade < MinGrade || grade > MaxGrade {
		return shared.ErrGradeOutOfRange
	}
	if strings.TrimSpace(subject) == "" {
		return shared.WrapError("student", "SetGrade", shared.ErrEmptyValue, "subject cannot be empty", nil)
	}
	if s.Grades == nil {
		s.Grades = make(map[string]float64)
	}
	s.Grades[subject] = grade
	return nil
}

// Validate checks the student's fields before any store call.
func (s *Student) Validate() error {
	if strings.TrimSpace(s.FirstName) == "" ||
		strings.TrimSpace(s.LastName) == "" ||
		strings.TrimSpace(s.Phone) == "" ||
		strings.TrimSpace(s.Class) == "" {
		return shared.ErrInvalidStudentFields
	}
	for _, g := range s.Grades {
		if g < MinGrade || g > MaxGrade {
			return shared.ErrGradeOutOfRange
		}
	}
	return nil
}

// FullName returns the student's display name.
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Clone returns a deep copy, so cached values are never aliased by
// callers mutating the grade map.
func (s *Student) Clone() *Student {
	cp := *s
	cp.Grades = make(map[string]float64, len(s.Grades))
	for subject, grade := range s.Grades {
		cp.Grades[subject] = grade
	}
	return &cp
}
