// Package bank turns raw bank data, statement CSV exports and webhook
// deliveries, into ledger records.
package bank

import (
	"context"
	"math"

	"huishoudpot/internal/classify"
	"huishoudpot/internal/core"
	"huishoudpot/internal/ledger"
	"huishoudpot/internal/log"
)

// BankAccountPayer is the synthetic payer credited for expenses taken
// straight off the shared account.
const BankAccountPayer = "Bank Account"

// ImportSummary reports what one import run produced.
type ImportSummary struct {
	Contributions int `json:"contributions"`
	Expenses      int `json:"expenses"`
	Skipped       int `json:"skipped"`
}

// Importer classifies transactions and writes them into the ledger under
// the system actor.
type Importer struct {
	ledger *ledger.Service
	logger *log.Logger
	actor  core.Actor
}

func NewImporter(svc *ledger.Service, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Importer{
		ledger: svc,
		logger: logger.WithComponent(log.ComponentBank),
		actor:  core.System("bank-import"),
	}
}

// Import runs every transaction through the classifier and records the
// result. Incoming transfers can become contributions; outgoing ones
// become shared expenses. Failures on individual rows are logged and
// counted as skipped rather than aborting the batch.
func (im *Importer) Import(ctx context.Context, txs []Transaction) (ImportSummary, error) {
	var summary ImportSummary
	for _, tx := range txs {
		if tx.Amount == 0 {
			summary.Skipped++
			continue
		}

		amount := math.Abs(tx.Amount)
		result := classify.Classify(tx.Description, tx.Counterparty, amount)

		if result.Kind == classify.KindContribution && tx.Amount > 0 {
			_, err := im.ledger.AddContribution(ctx, im.actor, ledger.ContributionInput{
				Flatmate:    core.UnassignedFlatmate,
				Amount:      amount,
				Timestamp:   tx.Date,
				Month:       core.MonthKey(tx.Date),
				Source:      core.SourceBankImport,
				Description: tx.Description,
			})
			if err != nil {
				im.logger.Warn("skipping contribution row",
					log.FieldTransactionID, tx.ID, log.FieldError, err)
				summary.Skipped++
				continue
			}
			summary.Contributions++
			continue
		}

		if tx.Amount > 0 {
			// Unclassified deposits are not household spending.
			summary.Skipped++
			continue
		}

		_, _, err := im.ledger.AddExpense(ctx, im.actor, ledger.ExpenseInput{
			Name:      tx.Description,
			Amount:    amount,
			Category:  result.Category,
			PaidBy:    BankAccountPayer,
			Source:    core.SourceBankImport,
			Timestamp: tx.Date,
		})
		if err != nil {
			im.logger.Warn("skipping expense row",
				log.FieldTransactionID, tx.ID, log.FieldError, err)
			summary.Skipped++
			continue
		}
		summary.Expenses++
	}

	im.logger.Info("import finished",
		"contributions", summary.Contributions,
		"expenses", summary.Expenses,
		"skipped", summary.Skipped)
	return summary, nil
}
