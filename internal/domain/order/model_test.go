package order

import (
	"errors"
	"fmt"
	"testing"
)

func TestIdentifierFrom(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "string orderId", raw: `{"orderId":"abc"}`, want: "abc"},
		{name: "numeric orderId", raw: `{"orderId":123}`, want: "123"},
		{name: "numeric basketId", raw: `{"basketId":456}`, want: "456"},
		{name: "string basketId", raw: `{"basketId":"b-1"}`, want: "b-1"},
		{name: "orderId wins over basketId", raw: `{"basketId":1,"orderId":"two"}`, want: "two"},
		{name: "whitespace trimmed", raw: `{"orderId":"  abc  "}`, want: "abc"},
		{name: "large basketId stays exact", raw: `{"basketId":12345678901234567890}`, want: "12345678901234567890"},
		{name: "missing", raw: `{}`, wantErr: true},
		{name: "empty string", raw: `{"orderId":""}`, wantErr: true},
		{name: "null identifier", raw: `{"orderId":null}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentifierFrom([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("IdentifierFrom() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("IdentifierFrom() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IdentifierFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentifierFromMissingIsErrMissingID(t *testing.T) {
	_, err := IdentifierFrom([]byte(`{"payload":{}}`))
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("IdentifierFrom() error = %v, want ErrMissingID", err)
	}
}

func TestIdentifierFromInvalidJSON(t *testing.T) {
	_, err := IdentifierFrom([]byte(`not-json`))
	if err == nil {
		t.Fatal("IdentifierFrom() = nil error for invalid JSON")
	}
	if errors.Is(err, ErrMissingID) {
		t.Error("invalid JSON should not be classified as a missing identifier")
	}
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("IdentifierFrom() error = %v, want ErrInvalidPayload", err)
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "missing id", err: ErrMissingID, want: true},
		{name: "invalid payload", err: ErrInvalidPayload, want: true},
		{name: "wrapped missing id", err: fmt.Errorf("extract: %w", ErrMissingID), want: true},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "transient", err: errors.New("connection refused"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
