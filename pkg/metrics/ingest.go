package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics contains Prometheus metrics for the ingestion service.
type IngestMetrics struct {
	MessagesTotal      *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	ReadingsStored     prometheus.Counter
	ReadingsPublished  prometheus.Counter
	ZonesCreated       prometheus.Counter
	SourcesCreated     prometheus.Counter
}

// NewIngestMetrics creates and registers ingestion service metrics.
func NewIngestMetrics(namespace string) *IngestMetrics {
	m := &IngestMetrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "messages_total",
				Help:      "Total number of reading messages consumed",
			},
			[]string{"queue", "status"}, // status: success, invalid, error
		),
		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "processing_duration_seconds",
				Help:      "Duration of reading message processing",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"queue"},
		),
		ReadingsStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "readings_stored_total",
				Help:      "Total number of indicators persisted",
			},
		),
		ReadingsPublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "readings_published_total",
				Help:      "Total number of synthetic readings published",
			},
		),
		ZonesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "zones_created_total",
				Help:      "Total number of zones created by ingestion upserts",
			},
		),
		SourcesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "sources_created_total",
				Help:      "Total number of sources created by ingestion upserts",
			},
		),
	}

	MustRegister(
		m.MessagesTotal,
		m.ProcessingDuration,
		m.ReadingsStored,
		m.ReadingsPublished,
		m.ZonesCreated,
		m.SourcesCreated,
	)

	return m
}
