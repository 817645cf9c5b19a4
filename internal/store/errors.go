package store

import "errors"

// Sentinel errors returned by store operations. Callers classify failures
// with errors.Is; anything else escaping the store is a storage failure.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidArgument indicates a malformed or out-of-range query
	// parameter. It is returned before any storage access happens.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrReferentialIntegrity indicates a write referenced a zone or
	// source that does not exist, or a delete would orphan indicators.
	ErrReferentialIntegrity = errors.New("referenced record does not exist")

	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("record already exists")
)
