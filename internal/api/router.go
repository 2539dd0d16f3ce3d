package api

import (
	"net/http"

	"github.com/example/order-ingest/internal/api/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// NewRouter wires the synchronous ingress. redisClient may be nil, which
// disables the idempotency middleware.
func NewRouter(h *Handlers, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if redisClient != nil {
		r.With(middleware.Idempotency(redisClient)).Post("/orders/reserve", h.ReserveOrder)
	} else {
		r.Post("/orders/reserve", h.ReserveOrder)
	}

	r.Get("/orders/{id}", h.GetOrder)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
