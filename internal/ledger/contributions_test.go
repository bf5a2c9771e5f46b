package ledger

import (
	"testing"
	"time"

	"huishoudpot/internal/core"
)

func TestContributionDebt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	anna := core.Person{ID: "anna", FirstName: "Anna", LastName: "de Vries"}
	calc := ContributionDebtCalculator{Required: 10}

	tests := []struct {
		name          string
		contributions []core.Contribution
		want          float64
	}{
		{
			name:          "no contributions means full year of debt",
			contributions: nil,
			want:          120,
		},
		{
			name:          "every month paid in full",
			contributions: monthlyPayments(anna.FirstName, now, 12, 10),
			want:          0,
		},
		{
			name: "partial month counts the shortfall",
			contributions: []core.Contribution{
				{Flatmate: "Anna", Amount: 6, Timestamp: now},
			},
			want: 110 + 4,
		},
		{
			name: "overpayment does not offset other months",
			contributions: []core.Contribution{
				{Flatmate: "Anna", Amount: 50, Timestamp: now},
			},
			want: 110,
		},
		{
			name: "month string matches when timestamp is missing",
			contributions: []core.Contribution{
				{Flatmate: "Anna", Amount: 10, Month: "2024-03"},
			},
			want: 110,
		},
		{
			name: "full name match",
			contributions: []core.Contribution{
				{Flatmate: "Anna de Vries", Amount: 10, Timestamp: now},
			},
			want: 110,
		},
		{
			name: "bank description mentions first name",
			contributions: []core.Contribution{
				{Flatmate: core.UnassignedFlatmate, Amount: 10, Timestamp: now, Description: "Monthly huishoudpot anna"},
			},
			want: 110,
		},
		{
			name: "bank description mentions last name",
			contributions: []core.Contribution{
				{Flatmate: core.UnassignedFlatmate, Amount: 10, Timestamp: now, Description: "bijdrage de Vries juni"},
			},
			want: 110,
		},
		{
			name: "other people's contributions are ignored",
			contributions: []core.Contribution{
				{Flatmate: "Bram", Amount: 10, Timestamp: now},
			},
			want: 120,
		},
		{
			name: "contributions older than twelve months are ignored",
			contributions: []core.Contribution{
				{Flatmate: "Anna", Amount: 10, Timestamp: now.AddDate(-2, 0, 0)},
			},
			want: 120,
		},
		{
			name: "zero amount rows contribute nothing but do not fail",
			contributions: []core.Contribution{
				{Flatmate: "Anna", Amount: 0, Timestamp: now},
			},
			want: 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Debt(anna, tt.contributions, now)
			if !almostEqual(got, tt.want) {
				t.Errorf("Debt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContributionDebtIsMonotonic(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	anna := core.Person{ID: "anna", FirstName: "Anna"}
	calc := ContributionDebtCalculator{Required: 10}

	var contributions []core.Contribution
	prev := calc.Debt(anna, contributions, now)
	for i := 0; i < 12; i++ {
		contributions = append(contributions, core.Contribution{
			Flatmate:  "Anna",
			Amount:    3.50,
			Timestamp: now.AddDate(0, -i, 0),
		})
		got := calc.Debt(anna, contributions, now)
		if got > prev+1e-9 {
			t.Fatalf("adding a contribution increased debt from %v to %v", prev, got)
		}
		prev = got
	}
}

func TestContributionMonthsWindow(t *testing.T) {
	// Month buckets are calendar months anchored at day one, so a late
	// January reading still yields exactly twelve distinct months.
	now := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	anna := core.Person{ID: "anna", FirstName: "Anna"}
	calc := ContributionDebtCalculator{Required: 10}

	months := calc.Months(anna, nil, now)
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	seen := map[string]bool{}
	for _, m := range months {
		if seen[m.Month] {
			t.Errorf("duplicate month %s", m.Month)
		}
		seen[m.Month] = true
	}
	if months[0].Month != "2024-01" {
		t.Errorf("first month = %s, want 2024-01", months[0].Month)
	}
	if months[11].Month != "2023-02" {
		t.Errorf("last month = %s, want 2023-02", months[11].Month)
	}
}

func monthlyPayments(name string, now time.Time, months int, amount float64) []core.Contribution {
	base := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, now.Location())
	out := make([]core.Contribution, 0, months)
	for i := 0; i < months; i++ {
		out = append(out, core.Contribution{
			Flatmate:  name,
			Amount:    amount,
			Timestamp: base.AddDate(0, -i, 0),
		})
	}
	return out
}
