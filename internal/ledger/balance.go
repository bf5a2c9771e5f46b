package ledger

import "huishoudpot/internal/core"

// Delta is one person's balance change produced by an operation. Applying
// an expense and later applying its reversal cancels out exactly because
// both sides are computed from the same stored split.
type Delta struct {
	PersonKey string  `json:"personKey"`
	Change    float64 `json:"change"`
}

// expenseDeltas computes the balance changes for applying an expense: the
// payer is credited with everyone else's share, each other participant is
// debited their share. The payer is credited even when not a participant,
// which is how bank-imported expenses paid by the shared account work.
func expenseDeltas(e core.Expense) []Delta {
	deltas := []Delta{{PersonKey: e.PaidBy, Change: e.Amount - e.SplitAmount}}
	for _, p := range e.Participants {
		if p == e.PaidBy {
			continue
		}
		deltas = append(deltas, Delta{PersonKey: p, Change: -e.SplitAmount})
	}
	return deltas
}

// reverseDeltas negates expenseDeltas using the participants and split
// stored on the expense, not the current household membership.
func reverseDeltas(e core.Expense) []Delta {
	deltas := expenseDeltas(e)
	for i := range deltas {
		deltas[i].Change = -deltas[i].Change
	}
	return deltas
}
