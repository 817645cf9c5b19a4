package store

import (
	"context"
	"fmt"
)

// KindSummary is the per-kind statistics row of the summary
// aggregation. A kind with no matching indicators never appears.
type KindSummary struct {
	Kind    string  `json:"type"`
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// AveragesByZone groups indicators of the given kind by zone and
// computes the arithmetic mean of their values. Labels carry the zone
// display names, paired by index with the averages. Groups follow the
// database's group-scan order; zones with no matching indicators are
// omitted, so no average is ever computed over an empty group.
func (s *Store) AveragesByZone(ctx context.Context, kind string, f Filter) (labels []string, series []float64, err error) {
	var rows []struct {
		Zone    string
		Average float64
	}

	q := s.db.WithContext(ctx).
		Model(&Indicator{}).
		Select("zones.name AS zone, AVG(indicators.value) AS average").
		Joins("JOIN zones ON zones.id = indicators.zone_id")
	q = f.WithKind(kind).Apply(q)

	if err := q.Group("zones.name").Scan(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate averages: %w", err)
	}

	labels = make([]string, len(rows))
	series = make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Zone
		series[i] = row.Average
	}

	s.logger.Debug("aggregated zone averages", "kind", kind, "groups", len(rows))
	return labels, series, nil
}

// Trend groups indicators of the given kind into daily, weekly, or
// monthly time buckets and sums their values per bucket. Buckets are
// returned in ascending chronological order and are sparse: a period
// with no indicators produces no bucket rather than a zero.
func (s *Store) Trend(ctx context.Context, kind string, zoneID *uint, period Period) (labels []string, series []float64, err error) {
	var rows []struct {
		Bucket string
		Total  float64
	}

	q := s.db.WithContext(ctx).
		Model(&Indicator{}).
		Select(period.sqlExpr() + " AS bucket, SUM(value) AS total").
		Where("kind = ?", kind)
	if zoneID != nil {
		q = q.Where("zone_id = ?", *zoneID)
	}

	if err := q.Group("bucket").Order("bucket").Scan(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate trend: %w", err)
	}

	labels = make([]string, len(rows))
	series = make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Bucket
		series[i] = row.Total
	}

	s.logger.Debug("aggregated trend", "kind", kind, "period", period, "buckets", len(rows))
	return labels, series, nil
}

// Summary groups matching indicators by kind and computes count,
// average, min, and max per kind, ordered by kind ascending. The counts
// across all rows sum to the number of matching indicators.
func (s *Store) Summary(ctx context.Context, f Filter) ([]KindSummary, error) {
	rows := []KindSummary{}

	q := s.db.WithContext(ctx).
		Model(&Indicator{}).
		Select("kind, COUNT(id) AS count, AVG(value) AS average, MIN(value) AS min, MAX(value) AS max")
	q = f.Apply(q)

	if err := q.Group("kind").Order("kind").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate summary: %w", err)
	}

	s.logger.Debug("aggregated summary", "kinds", len(rows))
	return rows, nil
}
