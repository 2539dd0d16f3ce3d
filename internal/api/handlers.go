package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/order-ingest/internal/domain/order"
	"github.com/example/order-ingest/internal/usecase"

	"github.com/go-chi/chi/v5"
)

// Reserve payloads are small JSON order events; anything bigger is bogus.
const maxReserveBody = 64 * 1024

type Handlers struct {
	reserveUC *usecase.ReserveOrder
	getUC     *usecase.GetOrder
}

func NewHandlers(reserveUC *usecase.ReserveOrder, getUC *usecase.GetOrder) *Handlers {
	return &Handlers{
		reserveUC: reserveUC,
		getUC:     getUC,
	}
}

// ReserveOrder accepts a raw order payload and archives it to blob storage.
// This path never touches the document store or the queue.
func (h *Handlers) ReserveOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReserveBody)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if strings.TrimSpace(string(body)) == "" {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return
	}

	res, err := h.reserveUC.Execute(r.Context(), body)
	if err != nil {
		slog.Error("reserve order failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store order payload")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message":   "order payload archived",
		"container": res.Container,
		"blobName":  res.BlobName,
	})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	rec, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		slog.Error("get order failed", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
