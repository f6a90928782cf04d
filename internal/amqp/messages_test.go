package amqp

import (
	"testing"
)

func TestTransactionEventFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"created", `{"type":"transaction.created","id":4,"timestamp":"2025-01-01T00:00:00Z"}`, false},
		{"deleted", `{"type":"transaction.deleted","id":9}`, false},
		{"unknown type", `{"type":"transaction.updated","id":1}`, true},
		{"missing id", `{"type":"transaction.created"}`, true},
		{"not json", `nope`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TransactionEventFromJSON([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("TransactionEventFromJSON(%s) error = %v, wantErr %v", tt.body, err, tt.wantErr)
			}
		})
	}
}

func TestNewTransactionEventEncodes(t *testing.T) {
	e := NewTransactionEvent(TransactionCreated, 12)
	body, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.ID != 12 || back.Type != TransactionCreated || !back.Timestamp.Equal(e.Timestamp) {
		t.Fatalf("unexpected event %+v", back)
	}
}
