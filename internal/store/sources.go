package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// SourceUpdate is a partial update of a source. Nil fields are left
// untouched.
type SourceUpdate struct {
	Name        *string
	URL         *string
	Description *string
	Frequency   *string
	Limitations *string
}

// ListSources returns one page of sources ordered by id.
func (s *Store) ListSources(ctx context.Context, page PageParams) (Page[Source], error) {
	page, err := page.Normalize()
	if err != nil {
		return Page[Source]{}, err
	}

	var (
		items []Source
		total int64
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Source{}).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count sources: %w", err)
		}
		if err := tx.Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to fetch sources: %w", err)
		}
		return nil
	})
	if err != nil {
		return Page[Source]{}, err
	}

	return NewPage(items, total, page), nil
}

// GetSource fetches a single source by id.
func (s *Store) GetSource(ctx context.Context, id uint) (*Source, error) {
	var source Source
	if err := s.db.WithContext(ctx).First(&source, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: source %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	return &source, nil
}

// CreateSource persists a new source. Names are unique.
func (s *Store) CreateSource(ctx context.Context, source *Source) error {
	if source == nil {
		return fmt.Errorf("%w: source cannot be nil", ErrInvalidArgument)
	}
	if source.Name == "" {
		return fmt.Errorf("%w: source name cannot be empty", ErrInvalidArgument)
	}

	if err := s.db.WithContext(ctx).Create(source).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: source %q", ErrAlreadyExists, source.Name)
		}
		return fmt.Errorf("failed to create source: %w", err)
	}
	return nil
}

// FindOrCreateSource looks a source up by its unique name, creating it
// when absent.
func (s *Store) FindOrCreateSource(ctx context.Context, source *Source) error {
	if source == nil || source.Name == "" {
		return fmt.Errorf("%w: source name cannot be empty", ErrInvalidArgument)
	}

	err := s.db.WithContext(ctx).
		Where("name = ?", source.Name).
		FirstOrCreate(source).Error
	if err != nil {
		return fmt.Errorf("failed to find or create source: %w", err)
	}
	return nil
}

// UpdateSource applies a partial update.
func (s *Store) UpdateSource(ctx context.Context, id uint, update SourceUpdate) (*Source, error) {
	var source Source

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&source, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: source %d", ErrNotFound, id)
			}
			return fmt.Errorf("failed to fetch source: %w", err)
		}

		fields := map[string]any{}
		if update.Name != nil {
			if *update.Name == "" {
				return fmt.Errorf("%w: source name cannot be empty", ErrInvalidArgument)
			}
			fields["name"] = *update.Name
		}
		if update.URL != nil {
			fields["url"] = *update.URL
		}
		if update.Description != nil {
			fields["description"] = *update.Description
		}
		if update.Frequency != nil {
			fields["frequency"] = *update.Frequency
		}
		if update.Limitations != nil {
			fields["limitations"] = *update.Limitations
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&source).Updates(fields).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: source %q", ErrAlreadyExists, *update.Name)
			}
			return fmt.Errorf("failed to update source: %w", err)
		}
		if err := tx.First(&source, id).Error; err != nil {
			return fmt.Errorf("failed to reload source: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &source, nil
}

// DeleteSource removes a source. A source still referenced by
// indicators cannot be deleted.
func (s *Store) DeleteSource(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&Indicator{}).Where("source_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check source references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("%w: source %d still has %d indicators", ErrReferentialIntegrity, id, refs)
		}

		result := tx.Delete(&Source{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete source: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: source %d", ErrNotFound, id)
		}
		return nil
	})
}
