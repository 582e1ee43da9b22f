package amqp

import (
	"encoding/json"
	"time"
)

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// LedgerSyncMessage tells the mirror worker that a ledger entry changed.
// It carries only the ID and version; the worker fetches the full entry
// from the database.
type LedgerSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(id, version int64, op string) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		ID:        id,
		Version:   version,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
