package ledger

import "huishoudpot/internal/core"

// ConsumptionDebtCalculator prices what a person owes for recorded
// consumptions across settlements, honoring per-settlement payment toggles.
type ConsumptionDebtCalculator struct{}

// Debt sums count times cost-per-unit over every settlement where the
// person has a positive count and no paid toggle. A zero count owes
// nothing regardless of payment state.
func (ConsumptionDebtCalculator) Debt(personKey string, settlements map[string]core.ConsumptionSettlement, payments map[string]core.SettlementPayment) float64 {
	var debt float64
	for _, s := range settlements {
		debt += settlementShare(s, personKey, payments)
	}
	return debt
}

// PerSettlement returns the unpaid share per settlement id, omitting
// settlements where the person owes nothing.
func (ConsumptionDebtCalculator) PerSettlement(personKey string, settlements map[string]core.ConsumptionSettlement, payments map[string]core.SettlementPayment) map[string]float64 {
	out := make(map[string]float64)
	for id, s := range settlements {
		if share := settlementShare(s, personKey, payments); share > 0 {
			out[id] = share
		}
	}
	return out
}

func settlementShare(s core.ConsumptionSettlement, personKey string, payments map[string]core.SettlementPayment) float64 {
	count := s.ConsumptionData[personKey]
	if count <= 0 {
		return 0
	}
	if payments[core.ConsumptionPaymentID(s.ID, personKey)].Paid {
		return 0
	}
	return float64(count) * s.CostPerUnit
}
