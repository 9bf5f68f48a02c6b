package amqp

import (
	"encoding/json"
	"time"

	"fintone/internal/core"
)

// RecordSavedMessage announces a freshly saved ledger record. It carries
// the full record because the mirror worker may run against a different
// backend than the publisher.
type RecordSavedMessage struct {
	Record    core.Record `json:"record"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewRecordSavedMessage(r core.Record, source string) *RecordSavedMessage {
	return &RecordSavedMessage{
		Record:    r,
		Source:    source,
		Timestamp: time.Now(),
	}
}

func (m *RecordSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSavedMessageFromJSON(data []byte) (*RecordSavedMessage, error) {
	var msg RecordSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
