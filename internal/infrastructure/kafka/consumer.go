package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string
}

// Consumer wraps a kafka-go Reader with manual offset commits. An offset is
// committed only after the message has been fully processed; an uncommitted
// message is redelivered after a rebalance or restart.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxWait:     1 * time.Second,
		StartOffset: resolveStartOffset(cfg.StartOffset),
	})
	return &Consumer{reader: r}
}

// resolveStartOffset maps the configured position used when the consumer
// group has no committed offset yet. Supported: "earliest" (default),
// "latest".
func resolveStartOffset(v string) int64 {
	if strings.EqualFold(strings.TrimSpace(v), "latest") {
		return kafka.LastOffset
	}
	return kafka.FirstOffset
}

func (c *Consumer) FetchMessage(ctx context.Context) (kafka.Message, error) {
	return c.reader.FetchMessage(ctx)
}

func (c *Consumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return c.reader.CommitMessages(ctx, msgs...)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
