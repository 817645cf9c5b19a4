// Package store provides relational persistence for environmental
// indicators and the query core that filters, sorts, paginates, and
// aggregates them.
package store

import (
	"time"
)

// User is an account that can read (role "user") or mutate
// (role "admin") tracked data.
type User struct {
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Role           string    `gorm:"not null;default:user" json:"role"`
	ID             uint      `gorm:"primaryKey" json:"id"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Zone is a geographic area indicators are attributed to. Name is not
// enforced unique but ingestion treats it as a natural key.
type Zone struct {
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	Name       string      `gorm:"index;not null" json:"name"`
	PostalCode *string     `json:"postal_code"`
	Geom       *string     `json:"geom"`
	Indicators []Indicator `gorm:"foreignKey:ZoneID" json:"-"`
	ID         uint        `gorm:"primaryKey" json:"id"`
}

// TableName specifies the table name for the Zone model.
func (Zone) TableName() string {
	return "zones"
}

// Source is the origin of a set of indicators, e.g. a monitoring
// network or an external API.
type Source struct {
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	Name        string      `gorm:"uniqueIndex;not null" json:"name"`
	URL         *string     `json:"url"`
	Description *string     `json:"description"`
	Frequency   *string     `json:"frequency"`
	Limitations *string     `json:"limitations"`
	Indicators  []Indicator `gorm:"foreignKey:SourceID" json:"-"`
	ID          uint        `gorm:"primaryKey" json:"id"`
}

// TableName specifies the table name for the Source model.
func (Source) TableName() string {
	return "sources"
}

// Indicator is a single timestamped numeric observation of some
// environmental quantity in a zone, reported by a source. Kind is an
// open-ended category string ("air_quality", "co2", "energy", ...).
// Attributes carries supplementary data the query core never inspects.
type Indicator struct {
	Timestamp  time.Time      `gorm:"index:idx_indicators_kind_timestamp,priority:2;index;not null" json:"timestamp"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	Kind       string         `gorm:"index:idx_indicators_kind_timestamp,priority:1;not null" json:"type"`
	Unit       string         `gorm:"not null" json:"unit"`
	Attributes map[string]any `gorm:"serializer:json" json:"attributes,omitempty"`
	Value      float64        `gorm:"not null" json:"value"`
	ZoneID     uint           `gorm:"index;not null" json:"zone_id"`
	SourceID   uint           `gorm:"index;not null" json:"source_id"`
	ID         uint           `gorm:"primaryKey" json:"id"`
}

// TableName specifies the table name for the Indicator model.
func (Indicator) TableName() string {
	return "indicators"
}
