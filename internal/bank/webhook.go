package bank

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"huishoudpot/internal/core"
)

// Webhook event types delivered by the bank.
const (
	EventTransactionCreated    = "TRANSACTION_CREATED"
	EventAccountBalanceUpdated = "ACCOUNT_BALANCE_UPDATED"
)

// WebhookEvent is the envelope posted to the webhook endpoint.
type WebhookEvent struct {
	EventType   string              `json:"eventType"`
	AccountID   string              `json:"accountId,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Transaction *WebhookTransaction `json:"transaction,omitempty"`
	Balance     *AccountBalance     `json:"balance,omitempty"`
}

// WebhookTransaction is one booked transaction as the bank reports it.
type WebhookTransaction struct {
	ID                    string        `json:"transactionId"`
	Amount                WebhookAmount `json:"transactionAmount"`
	BookingDate           string        `json:"bookingDate"`
	CreditorName          string        `json:"creditorName,omitempty"`
	DebtorName            string        `json:"debtorName,omitempty"`
	CreditorAccount       *AccountRef   `json:"creditorAccount,omitempty"`
	DebtorAccount         *AccountRef   `json:"debtorAccount,omitempty"`
	RemittanceInformation string        `json:"remittanceInformationUnstructured,omitempty"`
}

// WebhookAmount carries the value as a decimal string, the bank's wire
// convention.
type WebhookAmount struct {
	Value    string `json:"amount"`
	Currency string `json:"currency"`
}

// AccountRef identifies an account on either side of a transfer.
type AccountRef struct {
	IBAN string `json:"iban,omitempty"`
}

// AccountBalance is the payload of a balance update event.
type AccountBalance struct {
	Amount WebhookAmount `json:"balanceAmount"`
	Type   string        `json:"balanceType,omitempty"`
	Date   string        `json:"referenceDate,omitempty"`
}

// VerifySignature checks the hex HMAC-SHA256 of the raw request body in
// constant time. An empty secret rejects everything.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 signature for a body; exported so the
// worker and tests can produce valid webhook deliveries.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Normalize converts a webhook transaction into the statement form the
// importer understands. The description falls back from remittance text to
// creditor to debtor before giving up.
func (t WebhookTransaction) Normalize() (Transaction, error) {
	amount, err := core.ParseSignedAmount(t.Amount.Value)
	if err != nil {
		return Transaction{}, err
	}

	date, err := parseStatementDate(t.BookingDate)
	if err != nil {
		date = time.Now()
	}

	description := t.RemittanceInformation
	if description == "" {
		description = t.CreditorName
	}
	if description == "" {
		description = t.DebtorName
	}
	if description == "" {
		description = "Unknown transaction"
	}

	counterparty := t.CreditorName
	if counterparty == "" {
		counterparty = t.DebtorName
	}

	return Transaction{
		ID:           t.ID,
		Date:         date,
		Amount:       amount,
		Description:  description,
		Counterparty: counterparty,
	}, nil
}
