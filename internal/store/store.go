package store

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"
)

// Store exposes all persistence operations over the ecotrack schema:
// CRUD for zones, sources, indicators, and users, plus the filtered/
// paginated listing and the aggregations. It holds an explicitly
// injected database handle; there is no package-level connection state.
type Store struct {
	logger *slog.Logger
	db     *gorm.DB
}

// New creates a Store bound to the given database handle.
func New(logger *slog.Logger, db *gorm.DB) (*Store, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	return &Store{
		logger: logger,
		db:     db,
	}, nil
}

// DB returns the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}
