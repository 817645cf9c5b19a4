package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// IndicatorUpdate is a partial update of an indicator. Nil fields are
// left untouched.
type IndicatorUpdate struct {
	Kind       *string
	Value      *float64
	Unit       *string
	Timestamp  *time.Time
	Attributes map[string]any
	ZoneID     *uint
	SourceID   *uint
}

// ListIndicators returns one page of indicators matching the filter,
// ordered by the resolved sort. The total count and the window are read
// inside one transaction so the pagination envelope reflects a single
// consistent snapshot.
func (s *Store) ListIndicators(ctx context.Context, f Filter, sort Sort, page PageParams) (Page[Indicator], error) {
	page, err := page.Normalize()
	if err != nil {
		return Page[Indicator]{}, err
	}

	var (
		items []Indicator
		total int64
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := f.Apply(tx.Model(&Indicator{})).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count indicators: %w", err)
		}

		q := sort.Apply(f.Apply(tx.Model(&Indicator{}))).
			Offset(page.Skip).
			Limit(page.Limit)
		if err := q.Find(&items).Error; err != nil {
			return fmt.Errorf("failed to fetch indicators: %w", err)
		}

		return nil
	})
	if err != nil {
		return Page[Indicator]{}, err
	}

	s.logger.Debug("listed indicators",
		"total", total,
		"count", len(items),
		"skip", page.Skip,
		"limit", page.Limit,
	)

	return NewPage(items, total, page), nil
}

// GetIndicator fetches a single indicator by id.
func (s *Store) GetIndicator(ctx context.Context, id uint) (*Indicator, error) {
	var indicator Indicator
	if err := s.db.WithContext(ctx).First(&indicator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: indicator %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch indicator: %w", err)
	}
	return &indicator, nil
}

// CreateIndicator persists a new indicator. The referenced zone and
// source must already exist; the existence probes and the insert run in
// one transaction so the reference cannot vanish in between.
func (s *Store) CreateIndicator(ctx context.Context, indicator *Indicator) error {
	if indicator == nil {
		return fmt.Errorf("%w: indicator cannot be nil", ErrInvalidArgument)
	}
	if indicator.Kind == "" {
		return fmt.Errorf("%w: indicator kind cannot be empty", ErrInvalidArgument)
	}
	if indicator.Timestamp.IsZero() {
		return fmt.Errorf("%w: indicator timestamp cannot be zero", ErrInvalidArgument)
	}
	indicator.Timestamp = indicator.Timestamp.UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &Zone{}, indicator.ZoneID, "zone"); err != nil {
			return err
		}
		if err := requireExists(tx, &Source{}, indicator.SourceID, "source"); err != nil {
			return err
		}

		if err := tx.Create(indicator).Error; err != nil {
			return fmt.Errorf("failed to create indicator: %w", err)
		}
		return nil
	})
}

// UpdateIndicator applies a partial update. Re-pointing the zone or
// source reference re-runs the existence check.
func (s *Store) UpdateIndicator(ctx context.Context, id uint, update IndicatorUpdate) (*Indicator, error) {
	var indicator Indicator

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&indicator, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: indicator %d", ErrNotFound, id)
			}
			return fmt.Errorf("failed to fetch indicator: %w", err)
		}

		fields := map[string]any{}
		if update.Kind != nil {
			if *update.Kind == "" {
				return fmt.Errorf("%w: indicator kind cannot be empty", ErrInvalidArgument)
			}
			fields["kind"] = *update.Kind
		}
		if update.Value != nil {
			fields["value"] = *update.Value
		}
		if update.Unit != nil {
			fields["unit"] = *update.Unit
		}
		if update.Timestamp != nil {
			fields["timestamp"] = update.Timestamp.UTC()
		}
		if update.Attributes != nil {
			fields["attributes"] = update.Attributes
		}
		if update.ZoneID != nil {
			if err := requireExists(tx, &Zone{}, *update.ZoneID, "zone"); err != nil {
				return err
			}
			fields["zone_id"] = *update.ZoneID
		}
		if update.SourceID != nil {
			if err := requireExists(tx, &Source{}, *update.SourceID, "source"); err != nil {
				return err
			}
			fields["source_id"] = *update.SourceID
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&indicator).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update indicator: %w", err)
		}

		// Re-read so the returned value reflects the stored row.
		if err := tx.First(&indicator, id).Error; err != nil {
			return fmt.Errorf("failed to reload indicator: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &indicator, nil
}

// DeleteIndicator removes an indicator by id.
func (s *Store) DeleteIndicator(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Indicator{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete indicator: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: indicator %d", ErrNotFound, id)
	}
	return nil
}

// requireExists probes for a referenced row by primary key and maps a
// miss to ErrReferentialIntegrity.
func requireExists(tx *gorm.DB, model any, id uint, label string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s reference: %w", label, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %d", ErrReferentialIntegrity, label, id)
	}
	return nil
}
