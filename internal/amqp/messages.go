package amqp

import (
	"encoding/json"
	"time"
)

// Change kinds carried by LedgerChangedMessage.
const (
	ChangeTransactionAdded   = "transaction_added"
	ChangeTransactionUpdated = "transaction_updated"
	ChangeTransactionDeleted = "transaction_deleted"
	ChangeCardChanged        = "card_changed"
	ChangeCyclePaid          = "cycle_paid"
)

// LedgerChangedMessage tells consumers the ledger collection changed and
// derived views should be rebuilt from a fresh snapshot. It intentionally
// carries no data beyond identifiers: subscribers re-read, they do not
// patch.
type LedgerChangedMessage struct {
	Change        string    `json:"change"`
	TransactionID string    `json:"transactionId,omitempty"`
	CardID        string    `json:"cardId,omitempty"`
	CycleID       string    `json:"cycleId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a change notification for one mutation.
func NewLedgerChangedMessage(change, transactionID, cardID string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Change:        change,
		TransactionID: transactionID,
		CardID:        cardID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
