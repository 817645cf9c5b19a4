package mq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ClientInterface defines the message queue operations consumers and
// producers depend on, enabling fakes in tests.
type ClientInterface interface {
	// Push publishes data to the queue and waits for a broker
	// confirmation, retrying with backoff while disconnected.
	Push(ctx context.Context, data []byte) error

	// UnsafePush publishes without waiting for confirmation.
	UnsafePush(ctx context.Context, data []byte) error

	// Consume starts delivering queue items on the returned channel.
	// Each delivery must be Ack'd after processing or Nack'd on failure.
	Consume() (<-chan amqp.Delivery, error)

	// Close cleanly shuts down the channel and connection.
	Close() error
}

// Ensure Client implements ClientInterface.
var _ ClientInterface = (*Client)(nil)
