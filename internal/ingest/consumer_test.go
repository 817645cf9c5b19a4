package ingest_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"ecotrack.dev/ecotrack/internal/ingest"
	"ecotrack.dev/ecotrack/internal/store"
)

// fakeMQClient is an in-memory stand-in for the RabbitMQ client.
type fakeMQClient struct {
	mu         sync.Mutex
	pushed     [][]byte
	deliveries chan amqp.Delivery
	closed     bool
}

func newFakeMQClient() *fakeMQClient {
	return &fakeMQClient{deliveries: make(chan amqp.Delivery, 16)}
}

func (f *fakeMQClient) Push(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, data)
	return nil
}

func (f *fakeMQClient) UnsafePush(ctx context.Context, data []byte) error {
	return f.Push(ctx, data)
}

func (f *fakeMQClient) Consume() (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeMQClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.deliveries)
	}
	return nil
}

func (f *fakeMQClient) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

var _ = Describe("Consumer", func() {
	var (
		logger *slog.Logger
		st     *store.Store
		client *fakeMQClient
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))

		var err error
		st, err = store.New(logger, &gorm.DB{})
		Expect(err).NotTo(HaveOccurred())

		client = newFakeMQClient()
	})

	Describe("NewConsumer", func() {
		It("should return error when config is nil", func() {
			consumer, err := ingest.NewConsumer(nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("config cannot be nil"))
			Expect(consumer).To(BeNil())
		})

		It("should return error when logger is nil", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Store:     st,
				MQClient:  client,
				QueueName: "readings",
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger cannot be nil"))
			Expect(consumer).To(BeNil())
		})

		It("should return error when store is nil", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:    logger,
				MQClient:  client,
				QueueName: "readings",
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("store cannot be nil"))
			Expect(consumer).To(BeNil())
		})

		It("should return error when mq client is nil", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:    logger,
				Store:     st,
				QueueName: "readings",
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("mq client cannot be nil"))
			Expect(consumer).To(BeNil())
		})

		It("should return error when queue name is empty", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:   logger,
				Store:    st,
				MQClient: client,
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("queue name cannot be empty"))
			Expect(consumer).To(BeNil())
		})

		It("should create a consumer with valid configuration", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:    logger,
				Store:     st,
				MQClient:  client,
				QueueName: "readings",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(consumer).NotTo(BeNil())
		})
	})

	Describe("Start and Stop", func() {
		It("should drain deliveries until the client closes", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:    logger,
				Store:     st,
				MQClient:  client,
				QueueName: "readings",
			})
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			Expect(consumer.Start(ctx)).To(Succeed())
			Expect(consumer.Stop()).To(Succeed())
		})
	})
})
