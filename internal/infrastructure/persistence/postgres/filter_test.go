package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

func TestBuildWhere_Empty(t *testing.T) {
	clause, args, err := buildWhere(nil, studentColumns)
	require.NoError(t, err)
	assert.Empty(t, clause)
	assert.Empty(t, args)
}

func TestBuildWhere_EqualsAndContains(t *testing.T) {
	filters := []shared.Filter{
		shared.Equals("class", "B2"),
		shared.ContainsCI("last_name", "mar"),
	}

	clause, args, err := buildWhere(filters, studentColumns)
	require.NoError(t, err)

	assert.Equal(t, " WHERE class = $1 AND last_name ILIKE $2", clause)
	assert.Equal(t, []any{"B2", "%mar%"}, args)
}

func TestBuildWhere_UnknownField(t *testing.T) {
	_, _, err := buildWhere([]shared.Filter{shared.Equals("password_hash", "x")}, studentColumns)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestBuildWhere_UnknownOp(t *testing.T) {
	_, _, err := buildWhere([]shared.Filter{{Field: "class", Op: "regex", Value: "x"}}, studentColumns)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestBuildWhere_AccountColumns(t *testing.T) {
	clause, args, err := buildWhere([]shared.Filter{shared.Equals("role", "teacher")}, accountColumns)
	require.NoError(t, err)

	assert.Equal(t, " WHERE role = $1", clause)
	assert.Equal(t, []any{"teacher"}, args)
}
