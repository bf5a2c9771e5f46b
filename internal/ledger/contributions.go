package ledger

import (
	"strings"
	"time"

	"huishoudpot/internal/core"
)

// MonthStatus is one month's contribution standing for one person.
type MonthStatus struct {
	Month    string  `json:"month"`
	Paid     float64 `json:"paid"`
	Required float64 `json:"required"`
	Status   string  `json:"status"`
}

const (
	StatusPaid    = "paid"
	StatusPartial = "partial"
	StatusUnpaid  = "unpaid"
)

// ContributionDebtCalculator sums the shortfall against the required
// monthly contribution over the trailing twelve months. It is pure: all
// inputs come in as arguments and nothing is persisted.
type ContributionDebtCalculator struct {
	Required float64
}

// Debt returns how much the person still owes the house fund across the
// twelve months ending at now. Overpaying one month never offsets another.
func (c ContributionDebtCalculator) Debt(person core.Person, contributions []core.Contribution, now time.Time) float64 {
	var debt float64
	for _, m := range c.Months(person, contributions, now) {
		if short := m.Required - m.Paid; short > 0 {
			debt += short
		}
	}
	return debt
}

// Months returns the per-month standing for the trailing twelve months,
// most recent first.
func (c ContributionDebtCalculator) Months(person core.Person, contributions []core.Contribution, now time.Time) []MonthStatus {
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	out := make([]MonthStatus, 0, 12)
	for i := 0; i < 12; i++ {
		start := base.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		key := core.MonthKey(start)

		var paid float64
		for _, contrib := range contributions {
			if !matchesPerson(contrib, person) {
				continue
			}
			if !matchesMonth(contrib, key, start, end) {
				continue
			}
			// A contribution doc without an amount counts as zero, not
			// as an error; bank feeds occasionally deliver those.
			paid += contrib.Amount
		}

		status := StatusUnpaid
		switch {
		case paid >= c.Required:
			status = StatusPaid
		case paid > 0:
			status = StatusPartial
		}

		out = append(out, MonthStatus{Month: key, Paid: paid, Required: c.Required, Status: status})
	}
	return out
}

// matchesPerson links a contribution to a person. The flatmate field is
// free text, so exact name matches come first and the description is only
// consulted as a fuzzy fallback for bank-imported rows.
func matchesPerson(c core.Contribution, p core.Person) bool {
	flatmate := strings.TrimSpace(c.Flatmate)
	if strings.EqualFold(flatmate, p.FullName()) || strings.EqualFold(flatmate, p.FirstName) {
		return true
	}
	return p.MatchesText(c.Description)
}

// matchesMonth buckets a contribution into a calendar month. A usable
// timestamp wins; rows without one fall back to their month string.
func matchesMonth(c core.Contribution, key string, start, end time.Time) bool {
	if !c.Timestamp.IsZero() {
		if !c.Timestamp.Before(start) && c.Timestamp.Before(end) {
			return true
		}
	}
	return c.Month == key
}
