// Package classify maps raw bank transaction text onto ledger records.
// The rules are keyword tables tuned for Dutch bank statements; they favor
// recall over precision because a misfiled expense is cheap to fix and a
// missed contribution is not.
package classify

import (
	"strings"

	"huishoudpot/internal/core"
)

// Kind says what ledger record a transaction should become.
type Kind string

const (
	KindContribution Kind = "contribution"
	KindExpense      Kind = "expense"
)

// Result is the classification outcome for one transaction.
type Result struct {
	Kind     Kind
	Category core.Category
}

// Contribution detection bounds: monthly house-fund transfers sit in a
// narrow amount band around the required contribution.
const (
	contributionMin = 8.0
	contributionMax = 15.0
)

var contributionKeywords = []string{
	"huishoudpot", "house", "shared", "contribution",
	"maandelijkse", "monthly", "bijdrage",
}

// categoryOrder fixes rule precedence; the first category whose keywords
// match wins.
var categoryOrder = []core.Category{
	core.CategoryFood,
	core.CategoryToiletries,
	core.CategoryCleaning,
	core.CategoryBeer,
	core.CategorySeltzer,
	core.CategoryCoffee,
	core.CategoryUtilities,
}

var categoryKeywords = map[core.Category][]string{
	core.CategoryFood: {
		"albert heijn", "ah ", "jumbo", "lidl", "plus", "aldi",
		"supermarkt", "groceries", "boodschappen",
	},
	core.CategoryToiletries: {
		"kruidvat", "etos", "toiletpapier", "toilet paper", "drogist", "pharmacy",
	},
	core.CategoryCleaning: {
		"action", "blokker", "hema", "cleaning", "schoonmaak", "schoonmaakmiddel",
	},
	core.CategoryBeer: {
		"schultenbräu", "beer", "bier",
	},
	core.CategorySeltzer: {
		"seltzer", "gigg", "viper",
	},
	core.CategoryCoffee: {
		"coffee", "koffie", "starbucks", "costa", "espresso", "cappuccino",
	},
	core.CategoryUtilities: {
		"vattenfall", "eneco", "essent", "gas", "water", "electric",
		"energy", "energieleverancier", "utility",
	},
}

// Classify decides whether a transaction is a house-fund contribution or a
// shared expense, and which category an expense belongs to. Amount is the
// absolute transaction value in euros.
func Classify(description, counterparty string, amount float64) Result {
	if isContribution(description, counterparty, amount) {
		return Result{Kind: KindContribution, Category: core.CategoryContribution}
	}
	return Result{Kind: KindExpense, Category: Categorize(description)}
}

// Categorize matches the description against the category keyword tables
// in precedence order, falling through to other.
func Categorize(description string) core.Category {
	desc := strings.ToLower(description)
	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(desc, keyword) {
				return category
			}
		}
	}
	return core.CategoryOther
}

// isContribution checks the contribution rule first: a transfer inside the
// contribution amount band whose text mentions the house fund.
func isContribution(description, counterparty string, amount float64) bool {
	if amount < contributionMin || amount > contributionMax {
		return false
	}
	desc := strings.ToLower(description)
	for _, keyword := range contributionKeywords {
		if strings.Contains(desc, keyword) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(counterparty), "huishoud")
}
