package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a ledger change.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionDeleted EventType = "transaction.deleted"
)

// TransactionEvent announces a committed ledger change. It carries only the
// id; consumers read the record back from the ledger.
type TransactionEvent struct {
	Type      EventType `json:"type"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(t EventType, id int64) *TransactionEvent {
	return &TransactionEvent{
		Type:      t,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case TransactionCreated, TransactionDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.ID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", e.ID)
	}
	return &e, nil
}
