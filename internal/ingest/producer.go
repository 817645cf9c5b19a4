package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ecotrack.dev/ecotrack/pkg/generator"
	"ecotrack.dev/ecotrack/pkg/metrics"
	"ecotrack.dev/ecotrack/pkg/mq"
)

// Producer publishes synthetic readings for a set of fabricated sites
// at a fixed interval. It exists for simulation and load testing; real
// deployments feed the queue from external collectors.
type Producer struct {
	logger   *slog.Logger
	mqClient mq.ClientInterface
	metrics  *metrics.IngestMetrics // Optional metrics
	sites    []*generator.Site
	gens     [][]*generator.ReadingGenerator
	interval time.Duration
	source   SourceRef
}

// ProducerConfig holds the configuration for the Producer.
type ProducerConfig struct {
	Logger   *slog.Logger
	MQClient mq.ClientInterface
	Metrics  *metrics.IngestMetrics
	// SiteCount is the number of fabricated monitoring sites.
	SiteCount int
	// Interval is the time between rounds of readings.
	Interval time.Duration
}

// NewProducer creates a producer with fabricated sites, each carrying
// one value generator per indicator kind.
func NewProducer(cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil {
		return nil, errors.New("producer config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.MQClient == nil {
		return nil, errors.New("mq client cannot be nil")
	}

	if cfg.SiteCount <= 0 {
		return nil, errors.New("site count must be positive")
	}

	if cfg.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}

	kinds := []string{generator.KindAirQuality, generator.KindCO2, generator.KindEnergy}

	sites := make([]*generator.Site, 0, cfg.SiteCount)
	gens := make([][]*generator.ReadingGenerator, 0, cfg.SiteCount)
	for range cfg.SiteCount {
		site := generator.NewSite()
		if site == nil {
			return nil, errors.New("failed to fabricate site")
		}
		sites = append(sites, site)

		siteGens := make([]*generator.ReadingGenerator, 0, len(kinds))
		for _, kind := range kinds {
			siteGens = append(siteGens, generator.NewReadingGenerator(kind))
		}
		gens = append(gens, siteGens)
	}

	return &Producer{
		logger:   cfg.Logger,
		mqClient: cfg.MQClient,
		metrics:  cfg.Metrics,
		sites:    sites,
		gens:     gens,
		interval: cfg.Interval,
		source: SourceRef{
			Name:      "EcoTrack Simulator",
			URL:       "https://ecotrack.dev/simulator",
			Frequency: "continuous",
		},
	}, nil
}

// Run publishes one round of readings per interval until the context
// is canceled.
func (p *Producer) Run(ctx context.Context) error {
	p.logger.Info("starting producer",
		"sites", len(p.sites),
		"interval", p.interval,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("producer stopped")
			return ctx.Err()
		case now := <-ticker.C:
			if err := p.publishRound(ctx, now); err != nil {
				p.logger.Error("failed to publish readings", "error", err)
			}
		}
	}
}

func (p *Producer) publishRound(ctx context.Context, now time.Time) error {
	for i, site := range p.sites {
		for _, gen := range p.gens[i] {
			reading := gen.At(now)

			msg := ReadingMessage{
				Type:      reading.Kind,
				Value:     reading.Value,
				Unit:      reading.Unit,
				Timestamp: reading.Timestamp,
				Zone: ZoneRef{
					Name:       site.Name,
					PostalCode: site.PostalCode,
					Geom:       site.Geom(),
				},
				Source: p.source,
			}

			data, err := json.Marshal(&msg)
			if err != nil {
				return fmt.Errorf("failed to marshal reading: %w", err)
			}

			if err := p.mqClient.Push(ctx, data); err != nil {
				return fmt.Errorf("failed to push reading: %w", err)
			}

			if p.metrics != nil {
				p.metrics.ReadingsPublished.Inc()
			}
		}
	}

	p.logger.Debug("published readings round", "sites", len(p.sites))
	return nil
}
