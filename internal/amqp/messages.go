package amqp

import (
	"encoding/json"
	"time"

	"huishoudpot/internal/bank"
)

// TransactionMessage carries one bank transaction from the webhook receiver
// to the ingest worker. It holds the full normalized transaction so the
// worker never has to call back to the bank.
type TransactionMessage struct {
	Transaction bank.Transaction `json:"transaction"`
	ReceivedAt  time.Time        `json:"receivedAt"`
}

// NewTransactionMessage wraps a normalized transaction for publishing
func NewTransactionMessage(tx bank.Transaction) *TransactionMessage {
	return &TransactionMessage{
		Transaction: tx,
		ReceivedAt:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionMessageFromJSON creates a message from JSON bytes
func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
