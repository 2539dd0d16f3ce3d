package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/example/order-ingest/internal/domain/dlq"
	"github.com/example/order-ingest/internal/domain/order"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	kafkago "github.com/segmentio/kafka-go"
)

var (
	ordersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_orders_processed_total",
		Help: "The total number of successfully ingested order events",
	})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "consumer_processing_duration_seconds",
		Help:    "Time taken to archive and upsert one order event",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
	ordersDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_orders_dead_lettered_total",
		Help: "The total number of order events moved to the dead-letter topic",
	})
)

// Fetcher is the manual-commit consumption surface of the kafka reader.
type Fetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Publisher is the dead-letter producer surface.
type Publisher interface {
	SendMessage(ctx context.Context, key, value []byte) error
}

// Processor runs the ingestion pipeline for one raw event payload.
type Processor interface {
	Execute(ctx context.Context, raw []byte) error
}

// Loop drives each fetched message through the pipeline with bounded
// retries, publishes a dead-letter record for what keeps failing, and
// commits the offset only once the message's fate is settled. A message
// whose dead-letter publish fails is left uncommitted so it redelivers.
type Loop struct {
	name       string
	topic      string
	maxRetries int

	consumer Fetcher
	deadLQ   Publisher
	process  Processor

	// backoffFn is swappable in tests.
	backoffFn func(attempt int) time.Duration
}

func NewLoop(name, topic string, maxRetries int, c Fetcher, d Publisher, p Processor) *Loop {
	return &Loop{
		name:       name,
		topic:      topic,
		maxRetries: maxRetries,
		consumer:   c,
		deadLQ:     d,
		process:    p,
		backoffFn:  defaultBackoff,
	}
}

func defaultBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Run consumes until ctx is cancelled or the reader is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		msg, err := l.consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			slog.Error("failed to fetch message", "error", err)
			select {
			case <-time.After(1 * time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		l.handle(ctx, msg)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (l *Loop) handle(ctx context.Context, msg kafkago.Message) {
	var (
		attempts      int
		firstFailedAt time.Time
		lastErr       error
	)

	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := l.backoffFn(attempt)
			slog.Info("retrying order event", "attempt", attempt, "max", l.maxRetries, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
		}

		started := time.Now()
		err := l.process.Execute(ctx, msg.Value)
		attempts++

		if err == nil {
			processingDuration.Observe(time.Since(started).Seconds())
			ordersProcessed.Inc()
			lastErr = nil
			break
		}

		lastErr = err
		if firstFailedAt.IsZero() {
			firstFailedAt = time.Now().UTC()
		}
		slog.Error("processing failed", "error", err, "partition", msg.Partition, "offset", msg.Offset)

		// Unparseable payloads and missing identifiers fail the same way on
		// every attempt; send them straight to the dead-letter topic.
		if order.IsValidation(err) {
			break
		}
	}

	if ctx.Err() != nil {
		return
	}

	if lastErr != nil && !l.deadLetter(ctx, msg, attempts, firstFailedAt, lastErr) {
		// Leave the offset uncommitted so the message is redelivered.
		return
	}

	if err := l.consumer.CommitMessages(ctx, msg); err != nil {
		slog.Error("failed to commit kafka message", "error", err)
	}
}

func (l *Loop) deadLetter(ctx context.Context, msg kafkago.Message, attempts int, firstFailedAt time.Time, lastErr error) bool {
	rec := dlq.Record{
		Consumer:      l.name,
		Topic:         l.topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
		Attempts:      attempts,
		FailureType:   classifyFailure(lastErr),
		LastError:     lastErr.Error(),
		FirstFailedAt: firstFailedAt,
		LastAttemptAt: time.Now().UTC(),
		Payload:       msg.Value,
	}
	value, err := json.Marshal(rec)
	if err != nil {
		slog.Error("failed to marshal dead-letter record", "error", err)
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := l.deadLQ.SendMessage(sendCtx, msg.Key, value); err != nil {
		slog.Error("failed to publish dead-letter record", "error", err)
		return false
	}

	ordersDeadLettered.Inc()
	slog.Error("order event dead-lettered",
		"failure_type", rec.FailureType, "attempts", rec.Attempts,
		"partition", msg.Partition, "offset", msg.Offset)
	return true
}

func classifyFailure(err error) string {
	if order.IsValidation(err) {
		return dlq.FailureValidation
	}
	return dlq.FailureTransient
}
