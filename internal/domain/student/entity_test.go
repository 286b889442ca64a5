package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

func TestMean(t *testing.T) {
	s := New("Marie", "Dupont", "+33612345678", "B2")

	// No grades yet
	assert.Zero(t, s.Mean())

	require.NoError(t, s.SetGrade("math", 12))
	require.NoError(t, s.SetGrade("bio", 16))
	assert.Equal(t, 14.0, s.Mean())

	require.NoError(t, s.SetGrade("art", 8))
	assert.Equal(t, 12.0, s.Mean())
}

func TestSetGrade_ReplacesExisting(t *testing.T) {
	s := New("Marie", "Dupont", "+33612345678", "B2")

	require.NoError(t, s.SetGrade("math", 9))
	require.NoError(t, s.SetGrade("math", 17))

	assert.Equal(t, 17.0, s.Grades["math"])
	assert.Len(t, s.Grades, 1)
}

func TestSetGrade_Bounds(t *testing.T) {
	s := New("Marie", "Dupont", "+33612345678", "B2")

	assert.ErrorIs(t, s.SetGrade("math", -0.5), shared.ErrValueOutOfRange)
	assert.ErrorIs(t, s.SetGrade("math", 20.5), shared.ErrValueOutOfRange)
	assert.Empty(t, s.Grades)

	// The bounds themselves are valid.
	assert.NoError(t, s.SetGrade("math", 0))
	assert.NoError(t, s.SetGrade("bio", 20))
}

func TestSetGrade_EmptySubject(t *testing.T) {
	s := New("Marie", "Dupont", "+33612345678", "B2")

	assert.ErrorIs(t, s.SetGrade("  ", 10), shared.ErrEmptyValue)
}

func TestSetGrade_NilMap(t *testing.T) {
	s := &Student{ID: "x"}

	require.NoError(t, s.SetGrade("math", 10))
	assert.Equal(t, 10.0, s.Grades["math"])
}

func TestValidate(t *testing.T) {
	valid := New("Marie", "Dupont", "+33612345678", "B2")
	assert.NoError(t, valid.Validate())

	missing := New("Marie", "", "+33612345678", "B2")
	assert.ErrorIs(t, missing.Validate(), shared.ErrValidation)

	blank := New("Marie", "   ", "+33612345678", "B2")
	assert.ErrorIs(t, blank.Validate(), shared.ErrValidation)

	badGrade := New("Marie", "Dupont", "+33612345678", "B2")
	badGrade.Grades["math"] = 25 // bypasses SetGrade
	assert.ErrorIs(t, badGrade.Validate(), shared.ErrValueOutOfRange)
}

func TestIsPersisted(t *testing.T) {
	s := New("Marie", "Dupont", "+33612345678", "B2")
	assert.False(t, s.IsPersisted())

	s.ID = "abc-123"
	assert.True(t, s.IsPersisted())
}

func TestFullName(t *testing.T) {
	s := New("Marie", "Dupont", "+33612345678", "B2")
	assert.Equal(t, "Marie Dupont", s.FullName())
}

func TestClone_DoesNotAliasGrades(t *testing.T) {
	s := New("Marie", "Dupont", "+33612345678", "B2")
	require.NoError(t, s.SetGrade("math", 12))

	cp := s.Clone()
	require.NoError(t, cp.SetGrade("math", 18))

	assert.Equal(t, 12.0, s.Grades["math"])
	assert.Equal(t, 18.0, cp.Grades["math"])
}
