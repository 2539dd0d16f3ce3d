package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/order-ingest/internal/application/factories/infrastructure"
	"github.com/example/order-ingest/internal/archive"
	"github.com/example/order-ingest/internal/config"
	"github.com/example/order-ingest/internal/consumer"
	"github.com/example/order-ingest/internal/infrastructure/kafka"
	"github.com/example/order-ingest/internal/infrastructure/postgres"
	"github.com/example/order-ingest/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	consumerName = "order-ingest"
	maxRetries   = 5
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Metrics server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("consumer metrics listening", "port", cfg.Kafka.MetricsPort)
		http.ListenAndServe(":"+cfg.Kafka.MetricsPort, mux)
	}()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if err := postgres.EnsureSchema(ctx, pgPool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	blobClient, err := infraFactory.Blob()
	if err != nil {
		logger.Error("failed to init blob store", "error", err)
		os.Exit(1)
	}

	writer := archive.NewWriter(blobClient, cfg.Blob.Bucket)
	orderRepo := postgres.NewOrderRepository(pgPool)
	ingestUC := usecase.NewIngestOrder(writer, orderRepo)

	kafkaConsumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		GroupID:     cfg.Kafka.GroupID,
		StartOffset: cfg.Kafka.StartOffset,
	})
	defer kafkaConsumer.Close()

	dlqProducer := kafka.NewProducer(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.DLQ(),
	})
	defer dlqProducer.Close()

	loop := consumer.NewLoop(consumerName, cfg.Kafka.Topic, maxRetries, kafkaConsumer, dlqProducer, ingestUC)

	logger.Info("order ingest consumer started",
		"topic", cfg.Kafka.Topic, "group_id", cfg.Kafka.GroupID, "dlq", cfg.Kafka.DLQ())

	if err := loop.Run(ctx); err != nil {
		logger.Error("consumer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("order ingest consumer stopped")
}
