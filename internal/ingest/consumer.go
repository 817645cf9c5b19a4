package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"

	"ecotrack.dev/ecotrack/internal/store"
	"ecotrack.dev/ecotrack/pkg/metrics"
	"ecotrack.dev/ecotrack/pkg/mq"
)

// Consumer drains reading messages from RabbitMQ and persists them
// through the store: zone and source are upserted by name, then the
// indicator is created against them.
type Consumer struct {
	logger    *slog.Logger
	store     *store.Store
	mqClient  mq.ClientInterface
	metrics   *metrics.IngestMetrics // Optional metrics
	queueName string
	done      chan struct{}
}

// ConsumerConfig holds the configuration for the Consumer.
type ConsumerConfig struct {
	Logger    *slog.Logger
	Store     *store.Store
	MQClient  mq.ClientInterface
	Metrics   *metrics.IngestMetrics
	QueueName string
}

// NewConsumer creates a new Consumer instance.
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg == nil {
		return nil, errors.New("consumer config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}

	if cfg.MQClient == nil {
		return nil, errors.New("mq client cannot be nil")
	}

	if cfg.QueueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	return &Consumer{
		logger:    cfg.Logger,
		store:     cfg.Store,
		mqClient:  cfg.MQClient,
		metrics:   cfg.Metrics,
		queueName: cfg.QueueName,
		done:      make(chan struct{}),
	}, nil
}

// Start begins consuming messages from the queue.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting consumer", "queue", c.queueName)

	deliveries, err := c.mqClient.Consume()
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go c.processMessages(ctx, deliveries)

	c.logger.Info("consumer started, waiting for messages")
	return nil
}

func (c *Consumer) processMessages(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("context canceled, stopping message processing")
			close(c.done)
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("deliveries channel closed")
				close(c.done)
				return
			}

			c.handleDelivery(ctx, delivery)
		}
	}
}

// handleDelivery processes a single message. Malformed payloads are
// acked and dropped so a poison message cannot wedge the queue;
// storage failures are nacked for redelivery.
func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var timer *prometheus.Timer
	if c.metrics != nil {
		timer = prometheus.NewTimer(c.metrics.ProcessingDuration.WithLabelValues(c.queueName))
		defer timer.ObserveDuration()
	}

	var msg ReadingMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		c.discard(delivery, fmt.Errorf("failed to unmarshal reading: %w", err))
		return
	}
	if err := msg.Validate(); err != nil {
		c.discard(delivery, fmt.Errorf("invalid reading: %w", err))
		return
	}

	c.logger.Debug("received reading",
		"type", msg.Type,
		"zone", msg.Zone.Name,
		"value", msg.Value,
	)

	if err := c.SaveReading(ctx, &msg); err != nil {
		c.logger.Error("failed to save reading",
			"type", msg.Type,
			"zone", msg.Zone.Name,
			"error", err,
		)
		if c.metrics != nil {
			c.metrics.MessagesTotal.WithLabelValues(c.queueName, "error").Inc()
		}
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "error", err)
		return
	}

	if c.metrics != nil {
		c.metrics.MessagesTotal.WithLabelValues(c.queueName, "success").Inc()
		c.metrics.ReadingsStored.Inc()
	}
}

// discard acks a message that can never be processed.
func (c *Consumer) discard(delivery amqp.Delivery, err error) {
	c.logger.Error("discarding message", "error", err)
	if c.metrics != nil {
		c.metrics.MessagesTotal.WithLabelValues(c.queueName, "invalid").Inc()
	}
	if ackErr := delivery.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", "error", ackErr)
	}
}

// SaveReading upserts the referenced zone and source and creates the
// indicator.
func (c *Consumer) SaveReading(ctx context.Context, msg *ReadingMessage) error {
	zone := &store.Zone{Name: msg.Zone.Name}
	if msg.Zone.PostalCode != "" {
		zone.PostalCode = &msg.Zone.PostalCode
	}
	if msg.Zone.Geom != "" {
		zone.Geom = &msg.Zone.Geom
	}
	if err := c.store.FindOrCreateZone(ctx, zone); err != nil {
		return err
	}

	source := &store.Source{Name: msg.Source.Name}
	if msg.Source.URL != "" {
		source.URL = &msg.Source.URL
	}
	if msg.Source.Description != "" {
		source.Description = &msg.Source.Description
	}
	if msg.Source.Frequency != "" {
		source.Frequency = &msg.Source.Frequency
	}
	if err := c.store.FindOrCreateSource(ctx, source); err != nil {
		return err
	}

	indicator := &store.Indicator{
		Kind:       msg.Type,
		Value:      msg.Value,
		Unit:       msg.Unit,
		Timestamp:  msg.Timestamp.UTC(),
		Attributes: msg.Attributes,
		ZoneID:     zone.ID,
		SourceID:   source.ID,
	}
	return c.store.CreateIndicator(ctx, indicator)
}

// Stop closes the MQ client and waits for in-flight processing to end.
func (c *Consumer) Stop() error {
	c.logger.Info("stopping consumer")

	if err := c.mqClient.Close(); err != nil {
		return fmt.Errorf("failed to close mq client: %w", err)
	}

	<-c.done

	c.logger.Info("consumer stopped")
	return nil
}
