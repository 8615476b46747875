package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerChangedMessage(t *testing.T) {
	msg := NewLedgerChangedMessage(ChangeTransactionAdded, "tx-1", "card-1")

	if msg.Change != ChangeTransactionAdded {
		t.Errorf("NewLedgerChangedMessage() Change = %v, want %v", msg.Change, ChangeTransactionAdded)
	}
	if msg.TransactionID != "tx-1" {
		t.Errorf("NewLedgerChangedMessage() TransactionID = %v, want tx-1", msg.TransactionID)
	}
	if msg.CardID != "card-1" {
		t.Errorf("NewLedgerChangedMessage() CardID = %v, want card-1", msg.CardID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewLedgerChangedMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewLedgerChangedMessage() Timestamp should be recent")
	}
}

func TestLedgerChangedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &LedgerChangedMessage{
		Change:        ChangeCyclePaid,
		TransactionID: "tx-1",
		CardID:        "card-1",
		CycleID:       "card-1-2024-04-08",
		Timestamp:     timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerChangedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerChangedMessageFromJSON() error = %v", err)
	}

	if parsed.Change != msg.Change {
		t.Errorf("Parsed Change = %v, want %v", parsed.Change, msg.Change)
	}
	if parsed.TransactionID != msg.TransactionID {
		t.Errorf("Parsed TransactionID = %v, want %v", parsed.TransactionID, msg.TransactionID)
	}
	if parsed.CycleID != msg.CycleID {
		t.Errorf("Parsed CycleID = %v, want %v", parsed.CycleID, msg.CycleID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestLedgerChangedMessage_InvalidJSON(t *testing.T) {
	if _, err := LedgerChangedMessageFromJSON([]byte(`{"change": 42`)); err == nil {
		t.Error("LedgerChangedMessageFromJSON() should fail with invalid JSON")
	}
}
