package archive

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

var blobNamePattern = regexp.MustCompile(`^order-[0-9a-f]{32}-\d{17}\.json$`)

type fakeBlobStore struct {
	ensured []string
	puts    []fakePut

	ensureErr error
	putErr    error
}

type fakePut struct {
	bucket      string
	name        string
	data        []byte
	contentType string
}

func (s *fakeBlobStore) EnsureBucket(_ context.Context, bucket string) error {
	s.ensured = append(s.ensured, bucket)
	return s.ensureErr
}

func (s *fakeBlobStore) Put(_ context.Context, bucket, name string, data []byte, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts = append(s.puts, fakePut{bucket: bucket, name: name, data: data, contentType: contentType})
	return nil
}

func TestArchiveWritesUniquelyNamedJSONBlob(t *testing.T) {
	store := &fakeBlobStore{}
	w := NewWriter(store, "order-requests")
	w.now = func() time.Time {
		return time.Date(2024, 5, 17, 10, 30, 45, 123*int(time.Millisecond), time.UTC)
	}

	raw := []byte(`{"orderId":"abc"}`)
	name, err := w.Archive(context.Background(), raw)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	if !blobNamePattern.MatchString(name) {
		t.Errorf("blob name %q does not match %v", name, blobNamePattern)
	}
	if want := "20240517103045123.json"; name[len(name)-len(want):] != want {
		t.Errorf("blob name %q does not end with timestamp %q", name, want)
	}

	if len(store.ensured) != 1 || store.ensured[0] != "order-requests" {
		t.Errorf("EnsureBucket calls = %v, want one for order-requests", store.ensured)
	}
	if len(store.puts) != 1 {
		t.Fatalf("Put calls = %d, want 1", len(store.puts))
	}
	put := store.puts[0]
	if put.bucket != "order-requests" || put.name != name {
		t.Errorf("Put(%q, %q), want bucket order-requests and name %q", put.bucket, put.name, name)
	}
	if string(put.data) != string(raw) {
		t.Errorf("Put data = %q, want exact raw payload %q", put.data, raw)
	}
	if put.contentType != "application/json" {
		t.Errorf("Put contentType = %q, want application/json", put.contentType)
	}
}

func TestArchiveNamesNeverRepeat(t *testing.T) {
	store := &fakeBlobStore{}
	w := NewWriter(store, "order-requests")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name, err := w.Archive(context.Background(), []byte(`{}`))
		if err != nil {
			t.Fatalf("Archive() error = %v", err)
		}
		if seen[name] {
			t.Fatalf("duplicate blob name %q", name)
		}
		seen[name] = true
	}
}

func TestArchivePropagatesStoreErrors(t *testing.T) {
	ensureErr := errors.New("bucket check failed")
	putErr := errors.New("storage unavailable")

	tests := []struct {
		name  string
		store *fakeBlobStore
		want  error
	}{
		{name: "ensure bucket fails", store: &fakeBlobStore{ensureErr: ensureErr}, want: ensureErr},
		{name: "put fails", store: &fakeBlobStore{putErr: putErr}, want: putErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(tt.store, "order-requests")
			if _, err := w.Archive(context.Background(), []byte(`{}`)); !errors.Is(err, tt.want) {
				t.Errorf("Archive() error = %v, want wrapping %v", err, tt.want)
			}
		})
	}
}
