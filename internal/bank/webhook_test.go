package bank

import (
	"testing"
)

func TestVerifySignature(t *testing.T) {
	secret := "webhook-secret"
	body := []byte(`{"eventType":"TRANSACTION_CREATED"}`)

	tests := []struct {
		name      string
		secret    string
		signature string
		want      bool
	}{
		{"valid signature", secret, Sign(secret, body), true},
		{"wrong signature", secret, "deadbeef", false},
		{"signature for different body", secret, Sign(secret, []byte("other")), false},
		{"empty signature", secret, "", false},
		{"empty secret rejects everything", "", Sign("", body), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.secret, body, tt.signature); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebhookTransactionNormalize(t *testing.T) {
	tests := []struct {
		name            string
		tx              WebhookTransaction
		wantAmount      float64
		wantDescription string
		wantErr         bool
	}{
		{
			name: "remittance text wins",
			tx: WebhookTransaction{
				ID:                    "tx-1",
				Amount:                WebhookAmount{Value: "-23.45", Currency: "EUR"},
				BookingDate:           "2024-03-05",
				CreditorName:          "Albert Heijn",
				RemittanceInformation: "boodschappen week 10",
			},
			wantAmount:      -23.45,
			wantDescription: "boodschappen week 10",
		},
		{
			name: "falls back to creditor name",
			tx: WebhookTransaction{
				ID:           "tx-2",
				Amount:       WebhookAmount{Value: "-12.00", Currency: "EUR"},
				BookingDate:  "2024-03-05",
				CreditorName: "Kruidvat",
			},
			wantAmount:      -12.00,
			wantDescription: "Kruidvat",
		},
		{
			name: "falls back to debtor name",
			tx: WebhookTransaction{
				ID:          "tx-3",
				Amount:      WebhookAmount{Value: "10.00", Currency: "EUR"},
				BookingDate: "2024-03-01",
				DebtorName:  "A. de Vries",
			},
			wantAmount:      10.00,
			wantDescription: "A. de Vries",
		},
		{
			name: "no names at all",
			tx: WebhookTransaction{
				ID:          "tx-4",
				Amount:      WebhookAmount{Value: "-5.00", Currency: "EUR"},
				BookingDate: "2024-03-01",
			},
			wantAmount:      -5.00,
			wantDescription: "Unknown transaction",
		},
		{
			name: "unparseable amount",
			tx: WebhookTransaction{
				ID:     "tx-5",
				Amount: WebhookAmount{Value: "not-a-number"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tx.Normalize()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.Description != tt.wantDescription {
				t.Errorf("Description = %q, want %q", got.Description, tt.wantDescription)
			}
			if got.ID != tt.tx.ID {
				t.Errorf("ID = %q, want %q", got.ID, tt.tx.ID)
			}
		})
	}
}

func TestNormalizeBadDateFallsBackToNow(t *testing.T) {
	tx := WebhookTransaction{
		ID:          "tx-6",
		Amount:      WebhookAmount{Value: "-1.00"},
		BookingDate: "soon",
	}
	got, err := tx.Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.Date.IsZero() {
		t.Error("date should fall back to current time")
	}
}
