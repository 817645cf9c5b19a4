package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ZoneUpdate is a partial update of a zone. Nil fields are left
// untouched.
type ZoneUpdate struct {
	Name       *string
	PostalCode *string
	Geom       *string
}

// ListZones returns one page of zones ordered by id.
func (s *Store) ListZones(ctx context.Context, page PageParams) (Page[Zone], error) {
	page, err := page.Normalize()
	if err != nil {
		return Page[Zone]{}, err
	}

	var (
		items []Zone
		total int64
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Zone{}).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count zones: %w", err)
		}
		if err := tx.Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to fetch zones: %w", err)
		}
		return nil
	})
	if err != nil {
		return Page[Zone]{}, err
	}

	return NewPage(items, total, page), nil
}

// GetZone fetches a single zone by id.
func (s *Store) GetZone(ctx context.Context, id uint) (*Zone, error) {
	var zone Zone
	if err := s.db.WithContext(ctx).First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: zone %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch zone: %w", err)
	}
	return &zone, nil
}

// CreateZone persists a new zone.
func (s *Store) CreateZone(ctx context.Context, zone *Zone) error {
	if zone == nil {
		return fmt.Errorf("%w: zone cannot be nil", ErrInvalidArgument)
	}
	if zone.Name == "" {
		return fmt.Errorf("%w: zone name cannot be empty", ErrInvalidArgument)
	}

	if err := s.db.WithContext(ctx).Create(zone).Error; err != nil {
		return fmt.Errorf("failed to create zone: %w", err)
	}
	return nil
}

// FindOrCreateZone looks a zone up by name, creating it when absent.
// Ingestion treats the name as a natural key.
func (s *Store) FindOrCreateZone(ctx context.Context, zone *Zone) error {
	if zone == nil || zone.Name == "" {
		return fmt.Errorf("%w: zone name cannot be empty", ErrInvalidArgument)
	}

	err := s.db.WithContext(ctx).
		Where("name = ?", zone.Name).
		FirstOrCreate(zone).Error
	if err != nil {
		return fmt.Errorf("failed to find or create zone: %w", err)
	}
	return nil
}

// UpdateZone applies a partial update.
func (s *Store) UpdateZone(ctx context.Context, id uint, update ZoneUpdate) (*Zone, error) {
	var zone Zone

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&zone, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: zone %d", ErrNotFound, id)
			}
			return fmt.Errorf("failed to fetch zone: %w", err)
		}

		fields := map[string]any{}
		if update.Name != nil {
			if *update.Name == "" {
				return fmt.Errorf("%w: zone name cannot be empty", ErrInvalidArgument)
			}
			fields["name"] = *update.Name
		}
		if update.PostalCode != nil {
			fields["postal_code"] = *update.PostalCode
		}
		if update.Geom != nil {
			fields["geom"] = *update.Geom
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&zone).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update zone: %w", err)
		}
		if err := tx.First(&zone, id).Error; err != nil {
			return fmt.Errorf("failed to reload zone: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &zone, nil
}

// DeleteZone removes a zone. A zone still referenced by indicators
// cannot be deleted.
func (s *Store) DeleteZone(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&Indicator{}).Where("zone_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check zone references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("%w: zone %d still has %d indicators", ErrReferentialIntegrity, id, refs)
		}

		result := tx.Delete(&Zone{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete zone: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: zone %d", ErrNotFound, id)
		}
		return nil
	})
}
