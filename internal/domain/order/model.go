package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is the canonical document stored per order identifier. ID doubles as
// the document key and the partition key; both are always the identifier in
// string form.
type Record struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ErrMissingID marks payloads that carry no usable order identifier.
// Redelivering such a message can never succeed.
var ErrMissingID = validationError("payload has no order identifier")

// ErrInvalidPayload marks payloads that are not valid JSON. Like a missing
// identifier, redelivery can never fix this.
var ErrInvalidPayload = validationError("payload is not valid json")

// ErrNotFound is returned by read paths for unknown identifiers.
var ErrNotFound = notFoundError("order not found")

type validationError string

func (e validationError) Error() string { return string(e) }

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

// IsValidation reports whether err is a per-message defect that fails
// identically on every delivery, as opposed to a transient store failure.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// IdentifierFrom extracts the order identifier from a raw event payload.
// "orderId" wins over the legacy "basketId"; either may arrive as a JSON
// string or number and is coerced to its string form.
func IdentifierFrom(raw []byte) (string, error) {
	var probe struct {
		OrderID  json.RawMessage `json:"orderId"`
		BasketID json.RawMessage `json:"basketId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if id := coerceID(probe.OrderID); id != "" {
		return id, nil
	}
	if id := coerceID(probe.BasketID); id != "" {
		return id, nil
	}
	return "", ErrMissingID
}

func coerceID(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}
