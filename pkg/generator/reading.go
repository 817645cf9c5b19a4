// Package generator produces synthetic environmental readings for
// seeding and simulation.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Indicator kinds emitted by the generator.
const (
	KindAirQuality = "air_quality"
	KindCO2        = "co2"
	KindEnergy     = "energy"
)

// Site is a fabricated monitoring location.
type Site struct {
	Name       string  `fake:"{city}"`
	PostalCode string  `fake:"{zip}"`
	Latitude   float64 `fake:"{latitude}"`
	Longitude  float64 `fake:"{longitude}"`
}

// NewSite fabricates a random site.
func NewSite() *Site {
	var site Site
	if err := gofakeit.Struct(&site); err != nil {
		return nil
	}
	return &site
}

// Geom encodes the site location as a "lat,lon" coordinate pair.
func (s *Site) Geom() string {
	return fmt.Sprintf("%.4f,%.4f", s.Latitude, s.Longitude)
}

// Reading is one generated observation.
type Reading struct {
	Timestamp time.Time
	Kind      string
	Unit      string
	Value     float64
}

// ReadingGenerator produces a plausible value series for one kind at
// one site: a baseline with a daily cycle plus noise.
type ReadingGenerator struct {
	kind     string
	baseline float64
	swing    float64
	noise    float64
}

// NewReadingGenerator creates a generator for the given kind. Baselines
// are randomized per instance so sites differ from each other.
func NewReadingGenerator(kind string) *ReadingGenerator {
	g := &ReadingGenerator{kind: kind}
	switch kind {
	case KindCO2:
		g.baseline = 150 + rand.Float64()*150 // kg per day, 150-300
		g.swing = 30
		g.noise = 20
	case KindEnergy:
		g.baseline = 800 + rand.Float64()*700 // kWh, 800-1500
		g.swing = 200
		g.noise = 80
	default: // air quality
		g.baseline = 15 + rand.Float64()*25 // µg/m³, 15-40
		g.swing = 8
		g.noise = 5
	}
	return g
}

// Kind returns the indicator kind this generator produces.
func (g *ReadingGenerator) Kind() string {
	return g.kind
}

// Unit returns the measurement unit for the generated kind.
func (g *ReadingGenerator) Unit() string {
	switch g.kind {
	case KindCO2:
		return "kg"
	case KindEnergy:
		return "kWh"
	default:
		return "µg/m³"
	}
}

// At generates a reading for the given instant. The daily cycle peaks
// in the late afternoon; values never go negative.
func (g *ReadingGenerator) At(t time.Time) Reading {
	hour := float64(t.UTC().Hour())
	cycle := g.swing * math.Sin((hour-6)*math.Pi/12)
	jitter := (rand.Float64() - 0.5) * 2 * g.noise

	value := g.baseline + cycle + jitter
	if value < 0 {
		value = 0
	}

	return Reading{
		Timestamp: t.UTC(),
		Kind:      g.kind,
		Unit:      g.Unit(),
		Value:     value,
	}
}
