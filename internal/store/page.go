package store

import "fmt"

// Pagination bounds. A request without an explicit limit gets
// DefaultLimit; limits beyond MaxLimit are clamped to keep a single
// request from scanning the whole table.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// PageParams is an offset/limit window over a filtered, ordered result
// set.
type PageParams struct {
	Skip  int
	Limit int
}

// DefaultPageParams returns the window used when the caller supplies
// nothing.
func DefaultPageParams() PageParams {
	return PageParams{Skip: 0, Limit: DefaultLimit}
}

// Normalize validates the window and clamps the limit. Negative skip or
// limit is rejected with ErrInvalidArgument; a zero limit is a valid
// count-only request.
func (p PageParams) Normalize() (PageParams, error) {
	if p.Skip < 0 {
		return PageParams{}, fmt.Errorf("%w: skip must not be negative, got %d", ErrInvalidArgument, p.Skip)
	}
	if p.Limit < 0 {
		return PageParams{}, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidArgument, p.Limit)
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

// Page is a bounded slice of a filtered, ordered result set together
// with the total matched count and boundary flags. The flags are pure
// functions of skip, limit, and total; no cursor state is involved.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Skip    int   `json:"skip"`
	Limit   int   `json:"limit"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPage assembles the pagination envelope for a fetched window.
func NewPage[T any](items []T, total int64, p PageParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		Skip:    p.Skip,
		Limit:   p.Limit,
		HasNext: int64(p.Skip)+int64(p.Limit) < total,
		HasPrev: p.Skip > 0,
	}
}
