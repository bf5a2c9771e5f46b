package classify

import (
	"testing"

	"huishoudpot/internal/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		description  string
		counterparty string
		amount       float64
		wantKind     Kind
		wantCategory core.Category
	}{
		{
			name:         "monthly contribution by keyword and amount",
			description:  "huishoudpot boodschappen",
			amount:       10,
			wantKind:     KindContribution,
			wantCategory: core.CategoryContribution,
		},
		{
			name:         "dutch month transfer",
			description:  "Huishoudpot maart",
			amount:       10,
			wantKind:     KindContribution,
			wantCategory: core.CategoryContribution,
		},
		{
			name:         "contribution by counterparty",
			description:  "overboeking",
			counterparty: "Huishoudrekening",
			amount:       12.50,
			wantKind:     KindContribution,
			wantCategory: core.CategoryContribution,
		},
		{
			name:         "contribution keyword outside amount band is an expense",
			description:  "huishoudpot bijdrage",
			amount:       50,
			wantKind:     KindExpense,
			wantCategory: core.CategoryOther,
		},
		{
			name:         "below band is an expense",
			description:  "monthly contribution",
			amount:       5,
			wantKind:     KindExpense,
			wantCategory: core.CategoryOther,
		},
		{
			name:         "supermarket purchase",
			description:  "Albert Heijn boodschappen",
			amount:       23.45,
			wantKind:     KindExpense,
			wantCategory: core.CategoryFood,
		},
		{
			name:         "jumbo groceries",
			description:  "JUMBO AMSTERDAM",
			amount:       41.20,
			wantKind:     KindExpense,
			wantCategory: core.CategoryFood,
		},
		{
			name:         "drugstore",
			description:  "Kruidvat 1234 Utrecht",
			amount:       8.99,
			wantKind:     KindExpense,
			wantCategory: core.CategoryToiletries,
		},
		{
			name:         "cleaning supplies",
			description:  "Action filiaal 55",
			amount:       6.50,
			wantKind:     KindExpense,
			wantCategory: core.CategoryCleaning,
		},
		{
			name:         "beer crate",
			description:  "Schultenbräu krat bier",
			amount:       17.99,
			wantKind:     KindExpense,
			wantCategory: core.CategoryBeer,
		},
		{
			name:         "seltzer brand",
			description:  "GIGG seltzer",
			amount:       4.99,
			wantKind:     KindExpense,
			wantCategory: core.CategorySeltzer,
		},
		{
			name:         "coffee shop",
			description:  "Starbucks Centraal",
			amount:       4.80,
			wantKind:     KindExpense,
			wantCategory: core.CategoryCoffee,
		},
		{
			name:         "energy bill",
			description:  "Vattenfall termijnbedrag",
			amount:       145.00,
			wantKind:     KindExpense,
			wantCategory: core.CategoryUtilities,
		},
		{
			name:         "unknown merchant",
			description:  "Bol.com bestelling",
			amount:       29.99,
			wantKind:     KindExpense,
			wantCategory: core.CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.description, tt.counterparty, tt.amount)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %v, want %v", got.Category, tt.wantCategory)
			}
		})
	}
}

func TestFoodBeatsCoffeeOnOverlap(t *testing.T) {
	// "ah " and "koffie" can both match; food is checked first.
	got := Categorize("AH to go koffie")
	if got != core.CategoryFood {
		t.Errorf("Categorize = %v, want food", got)
	}
}
