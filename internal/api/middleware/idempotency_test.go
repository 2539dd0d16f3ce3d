package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (s *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *fakeStore) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	s.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (s *fakeStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (s *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (s *fakeStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func doRequest(t *testing.T, h http.Handler, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders/reserve", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplayOfSuccessConflicts(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if got := doRequest(t, handler, "key-1").Code; got != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", got)
	}
	if v, ok := store.value("idempotency:key-1"); !ok || v != "COMPLETED" {
		t.Fatalf("key after success = %q (present=%v), want COMPLETED", v, ok)
	}

	replay := doRequest(t, handler, "key-1")
	if replay.Code != http.StatusConflict {
		t.Errorf("replay status = %d, want 409", replay.Code)
	}
	if replay.Header().Get("X-Idempotency-Hit") != "true" {
		t.Error("replay missing X-Idempotency-Hit header")
	}
}

func TestIdempotencyFailedRequestStaysRetryable(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	if got := doRequest(t, handler, "key-1").Code; got != http.StatusInternalServerError {
		t.Fatalf("first request status = %d, want 500", got)
	}
	if _, ok := store.value("idempotency:key-1"); ok {
		t.Fatal("key still held after a failed request")
	}

	// The retry with the same key must reach the handler, not 409.
	if got := doRequest(t, handler, "key-1").Code; got != http.StatusOK {
		t.Fatalf("retry status = %d, want 200", got)
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}

	if got := doRequest(t, handler, "key-1").Code; got != http.StatusConflict {
		t.Errorf("replay after success status = %d, want 409", got)
	}
}

func TestIdempotencyImplicitSuccessStatus(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No explicit WriteHeader; net/http defaults to 200.
		w.Write([]byte("ok"))
	}))

	doRequest(t, handler, "key-1")
	if v, ok := store.value("idempotency:key-1"); !ok || v != "COMPLETED" {
		t.Errorf("key after implicit 200 = %q (present=%v), want COMPLETED", v, ok)
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		if got := doRequest(t, handler, "").Code; got != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, got)
		}
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}
