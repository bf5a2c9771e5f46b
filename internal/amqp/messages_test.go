package amqp

import (
	"testing"
	"time"

	"huishoudpot/internal/bank"
)

func TestNewTransactionMessage(t *testing.T) {
	tx := bank.Transaction{
		ID:          "tx-1",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:      -23.45,
		Description: "Albert Heijn boodschappen",
	}

	msg := NewTransactionMessage(tx)
	if msg.Transaction.ID != tx.ID {
		t.Errorf("Transaction.ID = %v, want %v", msg.Transaction.ID, tx.ID)
	}
	if msg.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should not be zero")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := TransactionMessageFromJSON(body)
	if err != nil {
		t.Fatalf("TransactionMessageFromJSON() error = %v", err)
	}
	if parsed.Transaction.Amount != tx.Amount {
		t.Errorf("parsed amount = %v, want %v", parsed.Transaction.Amount, tx.Amount)
	}
	if parsed.Transaction.Description != tx.Description {
		t.Errorf("parsed description = %q, want %q", parsed.Transaction.Description, tx.Description)
	}
}

func TestTransactionMessageInvalidJSON(t *testing.T) {
	if _, err := TransactionMessageFromJSON([]byte(`{"transaction": 42}`)); err == nil {
		t.Error("expected error for invalid payload")
	}
}
