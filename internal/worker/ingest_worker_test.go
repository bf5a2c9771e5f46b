package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"huishoudpot/internal/amqp"
	"huishoudpot/internal/bank"
	"huishoudpot/internal/core"
	"huishoudpot/internal/ledger"
	"huishoudpot/internal/store"
	"huishoudpot/internal/store/memory"
)

func newTestWorker(t *testing.T) (*IngestWorker, store.Store, *ledger.Service) {
	t.Helper()
	s := memory.New()
	svc := ledger.New(s, nil, 10.00)
	if _, err := svc.AddFlatmate(context.Background(), core.System("test"), "Anna", ""); err != nil {
		t.Fatalf("AddFlatmate failed: %v", err)
	}
	importer := bank.NewImporter(svc, nil)
	return NewIngestWorker(s, importer, nil, 2), s, svc
}

func TestHandleTransactionMessage(t *testing.T) {
	w, s, svc := newTestWorker(t)
	ctx := context.Background()

	tx := bank.Transaction{
		ID: "tx-1", Date: time.Now(), Amount: -12.50,
		Description: "Albert Heijn boodschappen",
	}
	if err := store.PutDoc(ctx, s, store.PendingTransactions, tx.ID, tx); err != nil {
		t.Fatalf("PutDoc failed: %v", err)
	}

	if err := w.HandleTransactionMessage(ctx, amqp.NewTransactionMessage(tx)); err != nil {
		t.Fatalf("HandleTransactionMessage failed: %v", err)
	}

	expenses, err := svc.Expenses(ctx)
	if err != nil {
		t.Fatalf("Expenses failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}

	// The pending copy is cleared once the delivery is handled.
	if _, err := s.Get(ctx, store.PendingTransactions, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("pending transaction not cleared: %v", err)
	}
}

func TestProcessPendingTransactionsHonorsBatchSize(t *testing.T) {
	w, s, svc := newTestWorker(t)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		tx := bank.Transaction{ID: id, Date: time.Now(), Amount: -5, Description: "Jumbo"}
		if err := store.PutDoc(ctx, s, store.PendingTransactions, id, tx); err != nil {
			t.Fatalf("PutDoc failed: %v", err)
		}
	}

	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("ProcessPendingTransactions failed: %v", err)
	}

	expenses, err := svc.Expenses(ctx)
	if err != nil {
		t.Fatalf("Expenses failed: %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("expected batch of 2 imported, got %d", len(expenses))
	}

	remaining, err := s.List(ctx, store.PendingTransactions)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("expected 1 pending left, got %d", len(remaining))
	}
}

func TestStartupCheckDrainsBacklog(t *testing.T) {
	w, s, svc := newTestWorker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		tx := bank.Transaction{ID: id, Date: time.Now(), Amount: -1, Description: "Lidl"}
		if err := store.PutDoc(ctx, s, store.PendingTransactions, id, tx); err != nil {
			t.Fatalf("PutDoc failed: %v", err)
		}
	}

	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck failed: %v", err)
	}

	expenses, err := svc.Expenses(ctx)
	if err != nil {
		t.Fatalf("Expenses failed: %v", err)
	}
	if len(expenses) != 5 {
		t.Errorf("expected full backlog of 5 imported, got %d", len(expenses))
	}
}
