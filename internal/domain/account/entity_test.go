package account

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleTeacher.IsValid())
	assert.True(t, RoleStudent.IsValid())

	assert.False(t, Role("superuser").IsValid())
	assert.False(t, Role("").IsValid())
	assert.False(t, Role("Admin").IsValid()) // case-sensitive
}

func TestValidate(t *testing.T) {
	valid := New("mdupont", "marie@example.org", RoleTeacher)
	assert.NoError(t, valid.Validate())

	noUsername := New("", "marie@example.org", RoleTeacher)
	assert.ErrorIs(t, noUsername.Validate(), shared.ErrValidation)

	noEmail := New("mdupont", "  ", RoleTeacher)
	assert.ErrorIs(t, noEmail.Validate(), shared.ErrValidation)

	badRole := New("mdupont", "marie@example.org", "superuser")
	assert.ErrorIs(t, badRole.Validate(), shared.ErrValidation)
}

func TestIsPersisted(t *testing.T) {
	a := New("mdupont", "marie@example.org", RoleTeacher)
	assert.False(t, a.IsPersisted())

	a.ID = "abc-123"
	assert.True(t, a.IsPersisted())
}
