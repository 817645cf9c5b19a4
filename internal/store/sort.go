package store

import (
	"fmt"

	"gorm.io/gorm"
)

// Sort field and direction defaults for indicator listings.
const (
	DefaultSortBy = "timestamp"
	DefaultOrder  = "desc"
)

// sortColumns whitelists the sortable fields and maps them to their
// column names. Anything outside this set is rejected, never
// interpolated into SQL.
var sortColumns = map[string]string{
	"timestamp":  "timestamp",
	"value":      "value",
	"kind":       "kind",
	"created_at": "created_at",
}

// Sort is a resolved, validated ordering over indicators.
type Sort struct {
	column string
	desc   bool
}

// ResolveSort validates sortBy and order and resolves them into a total
// order. Empty strings select the defaults (timestamp descending);
// unrecognized values are rejected with ErrInvalidArgument rather than
// silently falling back. Ties on the sort field are always broken by id
// ascending so repeated queries over static data paginate identically.
func ResolveSort(sortBy, order string) (Sort, error) {
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	if order == "" {
		order = DefaultOrder
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		return Sort{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidArgument, sortBy)
	}

	switch order {
	case "asc":
		return Sort{column: column}, nil
	case "desc":
		return Sort{column: column, desc: true}, nil
	default:
		return Sort{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidArgument, order)
	}
}

// Column returns the resolved column name.
func (s Sort) Column() string {
	if s.column == "" {
		return sortColumns[DefaultSortBy]
	}
	return s.column
}

// Descending reports whether the primary order is descending.
func (s Sort) Descending() bool {
	return s.desc
}

// Apply attaches the ORDER BY clause, including the id tie-break.
func (s Sort) Apply(q *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.desc {
		direction = "DESC"
	}
	return q.Order(fmt.Sprintf("%s %s, id ASC", s.Column(), direction))
}
