package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ecotrack.dev/ecotrack/internal/ingest"
	"ecotrack.dev/ecotrack/internal/store"
	"ecotrack.dev/ecotrack/pkg/metrics"
	"ecotrack.dev/ecotrack/pkg/mq"
)

const defaultSimulateInterval = 30 * time.Second

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the ingestion worker",
	Long: `Run the ingestion worker that:
- Consumes indicator readings from RabbitMQ
- Upserts zones and sources referenced by readings
- Persists readings to PostgreSQL
- Optionally runs a simulator publishing synthetic readings`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	ingestCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	ingestCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	ingestCmd.Flags().String("db-password", "", "PostgreSQL password")
	ingestCmd.Flags().String("db-name", "ecotrack", "PostgreSQL database name")
	ingestCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	ingestCmd.Flags().String("rabbitmq-url", "amqp://localhost:5672", "RabbitMQ URL")
	ingestCmd.Flags().String("queue-name", "indicator-readings", "RabbitMQ queue name for readings")
	ingestCmd.Flags().Bool("simulate", false, "publish synthetic readings alongside consuming")
	ingestCmd.Flags().Int("simulate-sites", 5, "number of fabricated monitoring sites")
	ingestCmd.Flags().Duration("simulate-interval", defaultSimulateInterval, "time between simulated reading rounds")

	_ = viper.BindPFlag("ingest.db.host", ingestCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("ingest.db.port", ingestCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("ingest.db.user", ingestCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("ingest.db.password", ingestCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("ingest.db.name", ingestCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("ingest.db.sslmode", ingestCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("ingest.rabbitmq.url", ingestCmd.Flags().Lookup("rabbitmq-url"))
	_ = viper.BindPFlag("ingest.rabbitmq.queue_name", ingestCmd.Flags().Lookup("queue-name"))
	_ = viper.BindPFlag("ingest.simulate.enabled", ingestCmd.Flags().Lookup("simulate"))
	_ = viper.BindPFlag("ingest.simulate.sites", ingestCmd.Flags().Lookup("simulate-sites"))
	_ = viper.BindPFlag("ingest.simulate.interval", ingestCmd.Flags().Lookup("simulate-interval"))
}

func runIngest(cmd *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting ingestion service")

	db, err := store.NewDB(&store.DBConfig{
		Logger:   logger,
		Host:     viper.GetString("ingest.db.host"),
		Port:     viper.GetInt("ingest.db.port"),
		User:     viper.GetString("ingest.db.user"),
		Password: viper.GetString("ingest.db.password"),
		DBName:   viper.GetString("ingest.db.name"),
		SSLMode:  viper.GetString("ingest.db.sslmode"),
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	defer func() {
		if err := store.CloseDB(db, logger); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	st, err := store.New(logger, db)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		return err
	}

	queueName := viper.GetString("ingest.rabbitmq.queue_name")
	mqURL := viper.GetString("ingest.rabbitmq.url")

	ingestMetrics := metrics.NewIngestMetrics("ecotrack")

	// Closed by consumer.Stop.
	mqClient := mq.New(queueName, mqURL, logger)
	mqClient.SetMetrics(metrics.NewMQMetrics("ecotrack"))

	consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
		Logger:    logger,
		Store:     st,
		MQClient:  mqClient,
		Metrics:   ingestMetrics,
		QueueName: queueName,
	})
	if err != nil {
		logger.Error("failed to create consumer", "error", err)
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		logger.Error("failed to start consumer", "error", err)
		return err
	}

	if viper.GetBool("ingest.simulate.enabled") {
		producerClient := mq.New(queueName, mqURL, logger)
		defer func() {
			if err := producerClient.Close(); err != nil {
				logger.Error("failed to close producer client", "error", err)
			}
		}()

		producer, err := ingest.NewProducer(&ingest.ProducerConfig{
			Logger:    logger,
			MQClient:  producerClient,
			Metrics:   ingestMetrics,
			SiteCount: viper.GetInt("ingest.simulate.sites"),
			Interval:  viper.GetDuration("ingest.simulate.interval"),
		})
		if err != nil {
			logger.Error("failed to create producer", "error", err)
			return err
		}

		go func() {
			if err := producer.Run(ctx); err != nil {
				logger.Error("simulator error", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context canceled")
	}

	cancel()
	if err := consumer.Stop(); err != nil {
		logger.Error("failed to stop consumer", "error", err)
		return err
	}

	logger.Info("ingestion service stopped")
	return nil
}
