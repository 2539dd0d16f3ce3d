package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/order-ingest/internal/domain/order"
)

// Archiver writes a raw payload to blob storage and returns the blob name.
type Archiver interface {
	Archive(ctx context.Context, raw []byte) (string, error)
}

// RecordStore upserts the canonical record, last-writer-wins per identifier.
type RecordStore interface {
	Upsert(ctx context.Context, rec *order.Record) error
}

// IngestOrder is the pipeline run once per received message: validate,
// archive, upsert. The caller acknowledges the message only when Execute
// returns nil; on error the message stays on the queue and the whole sequence
// re-runs on redelivery. That is safe because the archive step duplicates
// into a fresh uniquely named blob and the upsert overwrites the same record.
type IngestOrder struct {
	archiver Archiver
	records  RecordStore
}

func NewIngestOrder(archiver Archiver, records RecordStore) *IngestOrder {
	return &IngestOrder{
		archiver: archiver,
		records:  records,
	}
}

func (uc *IngestOrder) Execute(ctx context.Context, raw []byte) error {
	// Empty events are acknowledged as a no-op rather than retried forever.
	if strings.TrimSpace(string(raw)) == "" {
		slog.Info("skipping empty order event")
		return nil
	}

	id, err := order.IdentifierFrom(raw)
	if err != nil {
		return fmt.Errorf("extract identifier: %w", err)
	}

	blobName, err := uc.archiver.Archive(ctx, raw)
	if err != nil {
		return fmt.Errorf("archive payload: %w", err)
	}

	rec := &order.Record{
		ID:      id,
		OrderID: id,
		Payload: raw,
	}
	if err := uc.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	slog.Info("order event ingested", "order_id", id, "blob", blobName)
	return nil
}
