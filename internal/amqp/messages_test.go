package amqp

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintone/internal/core"
)

func TestNewRecordSavedMessage(t *testing.T) {
	r := core.Record{
		Type:    core.Profit,
		Amount:  decimal.NewFromInt(500),
		Date:    core.NewDate(2024, 6, 10),
		Details: "consulting",
	}
	msg := NewRecordSavedMessage(r, "http")

	if msg.Record.Key() != r.Key() {
		t.Errorf("Record = %v, want %v", msg.Record, r)
	}
	if msg.Source != "http" {
		t.Errorf("Source = %q", msg.Source)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Errorf("Timestamp = %v", msg.Timestamp)
	}
}

func TestRecordSavedMessageJSON(t *testing.T) {
	msg := &RecordSavedMessage{
		Record: core.Record{
			Type:    core.Loss,
			Amount:  decimal.RequireFromString("40.50"),
			Date:    core.NewDate(2024, 6, 11),
			Details: "groceries",
		},
		Source:    "cli",
		Timestamp: time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := RecordSavedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if parsed.Record.Key() != msg.Record.Key() {
		t.Errorf("Record = %v, want %v", parsed.Record, msg.Record)
	}
	if parsed.Source != msg.Source {
		t.Errorf("Source = %q", parsed.Source)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v", parsed.Timestamp)
	}
}

func TestRecordSavedMessageInvalidJSON(t *testing.T) {
	if _, err := RecordSavedMessageFromJSON([]byte(`{"record": "nope"`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
