package ledger

import (
	"sort"
	"time"

	"huishoudpot/internal/core"
)

// NetPosition is one person's overall standing toward the household.
// Net is the negated sum of both debts, so someone who owes nothing sits
// at zero. Raw expense balances are tracked separately and deliberately
// kept out of this figure.
type NetPosition struct {
	PersonKey        string  `json:"personKey"`
	Name             string  `json:"name"`
	ContributionDebt float64 `json:"contributionDebt"`
	ConsumptionDebt  float64 `json:"consumptionDebt"`
	Net              float64 `json:"net"`
}

// NetPositions combines both debt calculators for every person, sorted by
// person name for stable output.
func NetPositions(
	people map[string]core.Person,
	contributions []core.Contribution,
	settlements map[string]core.ConsumptionSettlement,
	payments map[string]core.SettlementPayment,
	now time.Time,
	requiredContribution float64,
) []NetPosition {
	contribCalc := ContributionDebtCalculator{Required: requiredContribution}
	consumptionCalc := ConsumptionDebtCalculator{}

	out := make([]NetPosition, 0, len(people))
	for key, person := range people {
		contribDebt := contribCalc.Debt(person, contributions, now)
		consumptionDebt := consumptionCalc.Debt(key, settlements, payments)
		out = append(out, NetPosition{
			PersonKey:        key,
			Name:             person.FullName(),
			ContributionDebt: contribDebt,
			ConsumptionDebt:  consumptionDebt,
			Net:              -(contribDebt + consumptionDebt),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
