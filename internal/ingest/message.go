// Package ingest moves environmental readings from RabbitMQ into the
// store, and can publish synthetic readings for simulation.
package ingest

import (
	"errors"
	"time"
)

// ZoneRef identifies the zone a reading belongs to. Zones are upserted
// by name on first sight.
type ZoneRef struct {
	Name       string `json:"name"`
	PostalCode string `json:"postal_code,omitempty"`
	Geom       string `json:"geom,omitempty"`
}

// SourceRef identifies the reporting source. Sources are upserted by
// their unique name.
type SourceRef struct {
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
}

// ReadingMessage is the JSON payload carried on the readings queue.
type ReadingMessage struct {
	Timestamp  time.Time      `json:"timestamp"`
	Type       string         `json:"type"`
	Unit       string         `json:"unit"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Zone       ZoneRef        `json:"zone"`
	Source     SourceRef      `json:"source"`
	Value      float64        `json:"value"`
}

// Validate reports whether the message carries everything needed to
// persist an indicator.
func (m *ReadingMessage) Validate() error {
	if m.Type == "" {
		return errors.New("reading type cannot be empty")
	}
	if m.Unit == "" {
		return errors.New("reading unit cannot be empty")
	}
	if m.Timestamp.IsZero() {
		return errors.New("reading timestamp cannot be zero")
	}
	if m.Zone.Name == "" {
		return errors.New("zone name cannot be empty")
	}
	if m.Source.Name == "" {
		return errors.New("source name cannot be empty")
	}
	return nil
}
