package store

import (
	"fmt"
	"time"
)

// Period selects the time-bucket granularity for trend aggregation.
type Period string

// Supported trend periods.
const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ResolvePeriod validates a period string. Empty selects monthly;
// anything else outside the known set is rejected.
func ResolvePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodMonthly, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalidArgument, s)
	}
}

// Key derives the bucket key for an instant: the calendar date for
// daily, the ISO year-week pair for weekly, the year-month pair for
// monthly. Keys sort lexicographically in chronological order.
func (p Period) Key(t time.Time) string {
	t = t.UTC()
	switch p {
	case PeriodDaily:
		return t.Format("2006-01-02")
	case PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// sqlExpr is the PostgreSQL expression computing the same bucket key as
// Key over the timestamp column.
func (p Period) sqlExpr() string {
	switch p {
	case PeriodDaily:
		return `to_char(timestamp, 'YYYY-MM-DD')`
	case PeriodWeekly:
		return `to_char(timestamp, 'IYYY-"W"IW')`
	default:
		return `to_char(timestamp, 'YYYY-MM')`
	}
}
