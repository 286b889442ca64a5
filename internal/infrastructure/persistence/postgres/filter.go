package postgres

import (
	"fmt"
	"strings"

	"github.com/campus-hub/student-records/internal/domain/shared"
)

// buildWhere translates a list of structural filters into a WHERE clause
// with positional arguments starting at $1. Field names are checked
// against the caller's column whitelist so predicates can never inject
// arbitrary SQL. An empty filter list yields an empty clause.
func buildWhere(filters []shared.Filter, columns map[string]string) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	conditions := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))

	for _, f := range filters {
		column, ok := columns[f.Field]
		if !ok {
			return "", nil, shared.WrapError("store", "Query", shared.ErrValidation,
				fmt.Sprintf("unknown filter field %q", f.Field), nil)
		}

		switch f.Op {
		case shared.OpEquals:
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)+1))
			args = append(args, f.Value)
		case shared.OpContainsCI:
			conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", column, len(args)+1))
			args = append(args, "%"+f.Value+"%")
		default:
			return "", nil, shared.WrapError("store", "Query", shared.ErrValidation,
				fmt.Sprintf("unknown filter op %q", f.Op), nil)
		}
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}
