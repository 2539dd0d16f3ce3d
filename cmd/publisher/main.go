// Publisher is an operator tool: it reads one JSON order event from stdin
// and publishes it to the ingest topic.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/example/order-ingest/internal/config"
	"github.com/example/order-ingest/internal/infrastructure/kafka"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var payload map[string]any
	if err := json.NewDecoder(os.Stdin).Decode(&payload); err != nil {
		logger.Error("failed to read json from stdin", "error", err)
		os.Exit(1)
	}
	value, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal payload", "error", err)
		os.Exit(1)
	}

	producer := kafka.NewProducer(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := producer.SendMessage(ctx, nil, value); err != nil {
		logger.Error("failed to publish", "error", err)
		os.Exit(1)
	}

	logger.Info("published order event", "topic", cfg.Kafka.Topic, "bytes", len(value))
}
