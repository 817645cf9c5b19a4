package store

import (
	"time"

	"gorm.io/gorm"
)

// Filter narrows an indicator query. The zero value matches every
// indicator; each populated field adds one AND-ed constraint. From/To
// are inclusive bounds on the observation timestamp. From > To is not
// an error: it simply matches nothing.
type Filter struct {
	From   *time.Time
	To     *time.Time
	ZoneID *uint
	Kind   string
}

// WithKind returns a copy of the filter with the kind constraint set.
// Used by aggregations that fix the indicator kind.
func (f Filter) WithKind(kind string) Filter {
	f.Kind = kind
	return f
}

// Apply attaches the filter's constraints to a query. The same filter
// value is applied to both the count query and the window query of a
// paginated listing, so the two can never disagree on the matched set.
func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.ZoneID != nil {
		q = q.Where("zone_id = ?", *f.ZoneID)
	}
	if f.From != nil {
		q = q.Where("timestamp >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("timestamp <= ?", f.To.UTC())
	}
	return q
}
