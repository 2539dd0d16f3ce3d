package archive

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const contentTypeJSON = "application/json"

// BlobStore is the narrow object-store surface the writer consumes.
type BlobStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, name string, data []byte, contentType string) error
}

// Writer archives raw payloads as immutable, uniquely named JSON blobs.
// Names never collide across concurrent writers and sort roughly by time, so
// redelivered messages produce duplicate blobs rather than overwrites.
type Writer struct {
	Store  BlobStore
	Bucket string

	// now is overridable in tests.
	now func() time.Time
}

func NewWriter(store BlobStore, bucket string) *Writer {
	return &Writer{Store: store, Bucket: bucket, now: time.Now}
}

// Archive writes raw into the bucket under a generated name and returns that
// name. The bucket is created on first use; concurrent instances may race on
// the create, which the store tolerates.
func (w *Writer) Archive(ctx context.Context, raw []byte) (string, error) {
	if err := w.Store.EnsureBucket(ctx, w.Bucket); err != nil {
		return "", fmt.Errorf("ensure bucket %q: %w", w.Bucket, err)
	}

	now := time.Now
	if w.now != nil {
		now = w.now
	}

	name := newBlobName(now())
	if err := w.Store.Put(ctx, w.Bucket, name, raw, contentTypeJSON); err != nil {
		return "", fmt.Errorf("archive %q: %w", name, err)
	}

	return name, nil
}

// newBlobName builds "order-<32 hex chars>-<17 digit UTC timestamp>.json":
// a random token for uniqueness plus a millisecond timestamp for rough
// chronological browsing.
func newBlobName(t time.Time) string {
	u := uuid.New()
	ts := t.UTC()
	return fmt.Sprintf("order-%s-%s%03d.json",
		hex.EncodeToString(u[:]),
		ts.Format("20060102150405"),
		ts.Nanosecond()/int(time.Millisecond))
}
