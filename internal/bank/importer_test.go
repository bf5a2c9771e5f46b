package bank

import (
	"context"
	"testing"
	"time"

	"huishoudpot/internal/core"
	"huishoudpot/internal/ledger"
	"huishoudpot/internal/store/memory"
)

func TestImport(t *testing.T) {
	svc := ledger.New(memory.New(), nil, 10.00)
	ctx := context.Background()
	admin := core.System("test")

	if _, err := svc.AddFlatmate(ctx, admin, "Anna", ""); err != nil {
		t.Fatalf("AddFlatmate failed: %v", err)
	}
	if _, err := svc.AddFlatmate(ctx, admin, "Bram", ""); err != nil {
		t.Fatalf("AddFlatmate failed: %v", err)
	}

	im := NewImporter(svc, nil)
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	summary, err := im.Import(ctx, []Transaction{
		{ID: "t1", Date: date, Amount: -23.45, Description: "Albert Heijn boodschappen", Counterparty: "Albert Heijn"},
		{ID: "t2", Date: date, Amount: 10.00, Description: "Huishoudpot maart"},
		{ID: "t3", Date: date, Amount: 250.00, Description: "Salary"},
		{ID: "t4", Date: date, Amount: 0},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if summary.Expenses != 1 {
		t.Errorf("Expenses = %d, want 1", summary.Expenses)
	}
	if summary.Contributions != 1 {
		t.Errorf("Contributions = %d, want 1", summary.Contributions)
	}
	if summary.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2 (deposit and zero row)", summary.Skipped)
	}

	expenses, err := svc.Expenses(ctx)
	if err != nil {
		t.Fatalf("Expenses failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 stored expense, got %d", len(expenses))
	}
	e := expenses[0]
	if e.PaidBy != BankAccountPayer {
		t.Errorf("PaidBy = %q, want %q", e.PaidBy, BankAccountPayer)
	}
	if e.Category != core.CategoryFood {
		t.Errorf("Category = %q, want food", e.Category)
	}
	if e.Amount != 23.45 {
		t.Errorf("Amount = %v, want 23.45 (absolute value)", e.Amount)
	}
	if e.Source != core.SourceBankImport {
		t.Errorf("Source = %q, want bank_import", e.Source)
	}
	if len(e.Participants) != 2 {
		t.Errorf("expected split across 2 flatmates, got %d participants", len(e.Participants))
	}

	contributions, err := svc.Contributions(ctx)
	if err != nil {
		t.Fatalf("Contributions failed: %v", err)
	}
	if len(contributions) != 1 {
		t.Fatalf("expected 1 stored contribution, got %d", len(contributions))
	}
	c := contributions[0]
	if c.Flatmate != core.UnassignedFlatmate {
		t.Errorf("Flatmate = %q, want %q", c.Flatmate, core.UnassignedFlatmate)
	}
	if c.Month != "2024-03" {
		t.Errorf("Month = %q, want 2024-03", c.Month)
	}
	if c.Source != core.SourceBankImport {
		t.Errorf("Source = %q, want bank_import", c.Source)
	}
	if c.Description != "Huishoudpot maart" {
		t.Errorf("Description = %q", c.Description)
	}
}

func TestImportBadRowsAreSkippedNotFatal(t *testing.T) {
	svc := ledger.New(memory.New(), nil, 10.00)
	ctx := context.Background()

	// No flatmates registered, so the expense row cannot be split.
	im := NewImporter(svc, nil)
	summary, err := im.Import(ctx, []Transaction{
		{ID: "t1", Amount: -5.00, Description: "Albert Heijn", Date: time.Now()},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if summary.Skipped != 1 || summary.Expenses != 0 {
		t.Errorf("summary = %+v, want 1 skipped", summary)
	}
}
