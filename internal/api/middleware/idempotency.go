package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the redis surface the middleware consumes; *redis.Client
// satisfies it.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// statusRecorder captures the status the handler wrote so the key's fate can
// follow the outcome.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Idempotency short-circuits repeated POSTs carrying the same
// Idempotency-Key header. Requests without the header pass through. A key is
// pinned only after a successful response; a failed request releases it so
// the client can retry under the same key.
func Idempotency(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := fmt.Sprintf("idempotency:%s", key)
			ctx := r.Context()

			_, err := store.Get(ctx, idemKey).Result()
			if err == nil {
				w.Header().Set("X-Idempotency-Hit", "true")
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "request already processed"}`))
				return
			} else if err != redis.Nil {
				// Redis down: let the request through rather than fail it.
				next.ServeHTTP(w, r)
				return
			}

			// Lock with a short TTL so a crash cannot hold the key forever.
			acquired, err := store.SetNX(ctx, idemKey, "PROCESSING", 10*time.Second).Result()
			if err != nil || !acquired {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "concurrent request"}`))
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				store.Set(ctx, idemKey, "COMPLETED", 24*time.Hour)
			} else {
				// A failed request must stay retryable under the same key.
				store.Del(ctx, idemKey)
			}
		})
	}
}
