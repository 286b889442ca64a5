package shared

// ══════════════════════════════════════════════════════════════════════════════
// QUERY FILTERS
// Structural predicates for store queries. Adapters translate these into
// store-native queries; unknown fields are rejected at the adapter level.
// ══════════════════════════════════════════════════════════════════════════════

// FilterOp identifies a filter comparison operator.
type FilterOp string

const (
	// OpEquals matches a field exactly.
	OpEquals FilterOp = "eq"

	// OpContainsCI matches a case-insensitive substring of a field.
	OpContainsCI FilterOp = "contains_ci"
)

// Filter is a single structural predicate on an entity field.
// A list of filters is combined with AND semantics.
type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

// Equals creates an exact-match filter.
func Equals(field, value string) Filter {
	return Filter{Field: field, Op: OpEquals, Value: value}
}

// ContainsCI creates a case-insensitive substring filter.
func ContainsCI(field, substr string) Filter {
	return Filter{Field: field, Op: OpContainsCI, Value: substr}
}
