// Package worker processes queued bank transactions into the ledger.
package worker

import (
	"context"
	"fmt"

	"huishoudpot/internal/amqp"
	"huishoudpot/internal/bank"
	"huishoudpot/internal/log"
	"huishoudpot/internal/store"
)

// IngestWorker turns queued bank transactions into ledger records. The
// AMQP stream is the fast path; the pending collection in the store is the
// backup for deliveries lost while the worker was down.
type IngestWorker struct {
	store     store.Store
	importer  *bank.Importer
	logger    *log.Logger
	batchSize int
}

func NewIngestWorker(s store.Store, importer *bank.Importer, logger *log.Logger, batchSize int) *IngestWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if batchSize < 1 {
		batchSize = 10
	}
	return &IngestWorker{
		store:     s,
		importer:  importer,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
	}
}

// HandleTransactionMessage processes a single transaction from AMQP and
// clears its pending copy on success. Returning an error requeues the
// delivery.
func (w *IngestWorker) HandleTransactionMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	if _, err := w.importer.Import(ctx, []bank.Transaction{msg.Transaction}); err != nil {
		return fmt.Errorf("import transaction %s: %w", msg.Transaction.ID, err)
	}
	w.clearPending(ctx, msg.Transaction.ID)
	return nil
}

// ProcessPendingTransactions imports up to batchSize transactions that
// were persisted but whose AMQP delivery never arrived.
func (w *IngestWorker) ProcessPendingTransactions(ctx context.Context) error {
	return w.drainPending(ctx, w.batchSize)
}

// StartupCheck drains a larger pending backlog once at worker startup to
// recover from downtime.
func (w *IngestWorker) StartupCheck(ctx context.Context) error {
	return w.drainPending(ctx, w.batchSize*5)
}

func (w *IngestWorker) drainPending(ctx context.Context, limit int) error {
	pending, err := store.ListDocs[bank.Transaction](ctx, w.store, store.PendingTransactions)
	if err != nil {
		return fmt.Errorf("load pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.Info("processing pending transactions", "count", len(pending), "limit", limit)

	processed := 0
	for key, tx := range pending {
		if processed >= limit {
			break
		}
		if _, err := w.importer.Import(ctx, []bank.Transaction{tx}); err != nil {
			w.logger.Error("failed to import pending transaction",
				log.FieldTransactionID, key, log.FieldError, err)
			continue
		}
		if err := w.store.Delete(ctx, store.PendingTransactions, key); err != nil {
			w.logger.Error("failed to clear pending transaction",
				log.FieldTransactionID, key, log.FieldError, err)
		}
		processed++
	}

	w.logger.Info("pending transactions processed", "processed", processed)
	return nil
}

func (w *IngestWorker) clearPending(ctx context.Context, txID string) {
	if txID == "" {
		return
	}
	if err := w.store.Delete(ctx, store.PendingTransactions, txID); err != nil {
		w.logger.Warn("failed to clear pending transaction",
			log.FieldTransactionID, txID, log.FieldError, err)
	}
}
