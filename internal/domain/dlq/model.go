package dlq

import (
	"encoding/json"
	"time"
)

// Failure classes recorded on dead-lettered messages.
const (
	FailureValidation = "validation"
	FailureTransient  = "transient"
	FailureUnknown    = "unknown"
)

// Record is the envelope published to the dead-letter topic once a message
// has exhausted its retry budget. The original payload travels along so the
// message can be replayed after the cause is fixed.
type Record struct {
	Consumer      string          `json:"consumer"`
	Topic         string          `json:"topic"`
	Partition     int             `json:"partition"`
	Offset        int64           `json:"offset"`
	Attempts      int             `json:"attempts"`
	FailureType   string          `json:"failure_type"`
	LastError     string          `json:"last_error"`
	FirstFailedAt time.Time       `json:"first_failed_at"`
	LastAttemptAt time.Time       `json:"last_attempt_at"`
	Payload       json.RawMessage `json:"payload"`
}
