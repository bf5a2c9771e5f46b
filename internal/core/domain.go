package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryFood         Category = "food"
	CategoryCleaning     Category = "cleaning"
	CategoryToiletries   Category = "toiletries"
	CategoryBeer         Category = "beer"
	CategorySeltzer      Category = "seltzer"
	CategoryCoffee       Category = "coffee"
	CategoryUtilities    Category = "utilities"
	CategoryActivities   Category = "activities"
	CategoryContribution Category = "contribution"
	CategoryOther        Category = "other"
)

const (
	ConsumptionCoffee  ConsumptionType = "coffee"
	ConsumptionBeer    ConsumptionType = "beer"
	ConsumptionSeltzer ConsumptionType = "seltzer"
)

const (
	SourceManual     = "manual"
	SourceBankImport = "bank_import"
)

// UnassignedFlatmate is the placeholder owner for contributions ingested from
// bank statements before someone assigns them to a person.
const UnassignedFlatmate = "Unassigned"

type (
	Category string

	ConsumptionType string

	// Person is a household member. ID is the canonical key used for
	// balances, expense participants and consumption data; the name fields
	// are display/matching data only.
	Person struct {
		ID        string    `json:"id"`
		FirstName string    `json:"firstName"`
		LastName  string    `json:"lastName,omitempty"`
		JoinedAt  time.Time `json:"joinedAt"`
	}

	// Expense is a shared cost split evenly across its participants.
	// Participants and SplitAmount are captured at creation time so a later
	// membership change cannot corrupt the reversal of this expense.
	Expense struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Amount       float64   `json:"amount"`
		Category     Category  `json:"category"`
		PaidBy       string    `json:"paidBy"`
		Participants []string  `json:"participants"`
		SplitAmount  float64   `json:"splitAmount"`
		Timestamp    time.Time `json:"timestamp"`
		EditedAt     time.Time `json:"editedAt,omitempty"`
		Source       string    `json:"source,omitempty"`
	}

	// Balance is the denormalized running total per person. Positive means
	// the person is owed money, negative means they owe. It is mutated only
	// by ledger apply/reverse operations, never recomputed from history.
	Balance struct {
		PersonKey string  `json:"personKey"`
		Balance   float64 `json:"balance"`
	}

	// Contribution is one payment into the shared house fund. Flatmate is a
	// free-text name: manual entries carry the person's full name, bank
	// imports start out as UnassignedFlatmate with only Month set reliably.
	Contribution struct {
		ID          string    `json:"id"`
		Flatmate    string    `json:"flatmate"`
		Amount      float64   `json:"amount"`
		Timestamp   time.Time `json:"timestamp,omitempty"`
		Month       string    `json:"month"`
		Source      string    `json:"source,omitempty"`
		Description string    `json:"description,omitempty"`
	}

	// ConsumptionSettlement is one round of a shared consumable purchase,
	// billed by individual unit counts keyed by person ID.
	ConsumptionSettlement struct {
		ID                string          `json:"id"`
		Type              ConsumptionType `json:"type"`
		Date              time.Time       `json:"date"`
		TotalCost         float64         `json:"totalCost"`
		CostPerUnit       float64         `json:"costPerUnit"`
		ConsumptionData   map[string]int  `json:"consumptionData"`
		TotalConsumptions int             `json:"totalConsumptions"`
		Notes             string          `json:"notes,omitempty"`
		CreatedAt         time.Time       `json:"createdAt"`
	}

	// SettlementPayment is a toggle record: its presence with Paid=true
	// cancels the matching debt. Pairwise ids look like "<debtor>_<creditor>",
	// consumption ids like "consumption_<settlementID>_<personKey>".
	SettlementPayment struct {
		ID          string    `json:"id"`
		Paid        bool      `json:"paid"`
		Amount      float64   `json:"amount"`
		LastUpdated time.Time `json:"lastUpdated"`
		UpdatedBy   string    `json:"updatedBy"`
	}

	// ConsumptionTypeInfo describes the defaults for one consumable.
	ConsumptionTypeInfo struct {
		Label              string
		Unit               string
		DefaultCostPerUnit float64
	}
)

// Categories lists every expense category in display order.
var Categories = []Category{
	CategoryFood, CategoryCleaning, CategoryToiletries, CategoryBeer,
	CategorySeltzer, CategoryCoffee, CategoryUtilities, CategoryActivities,
	CategoryContribution, CategoryOther,
}

// ConsumptionTypes maps each consumable to its defaults.
var ConsumptionTypes = map[ConsumptionType]ConsumptionTypeInfo{
	ConsumptionCoffee:  {Label: "Coffee", Unit: "cup", DefaultCostPerUnit: 0.50},
	ConsumptionBeer:    {Label: "Beer", Unit: "bottle", DefaultCostPerUnit: 1.50},
	ConsumptionSeltzer: {Label: "Seltzer", Unit: "bottle", DefaultCostPerUnit: 1.00},
}

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyFirstName    = errors.New("empty first name")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrNoParticipants    = errors.New("no participants to split across")
	ErrNoPayer           = errors.New("missing payer")
	ErrInvalidType       = errors.New("invalid consumption type")
	ErrNoConsumptionData = errors.New("no consumption recorded")
)

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (t ConsumptionType) Valid() bool {
	_, ok := ConsumptionTypes[t]
	return ok
}

// FullName derives the display name from the name parts.
func (p Person) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// MatchesText reports whether a free-text bank description mentions this
// person. It is the fuzzy-matching helper only; never use it for lookups.
func (p Person) MatchesText(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	if p.FirstName != "" && strings.Contains(lower, strings.ToLower(p.FirstName)) {
		return true
	}
	return p.LastName != "" && strings.Contains(lower, strings.ToLower(p.LastName))
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if len(p.FirstName) > 100 || len(p.LastName) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.PaidBy == "" {
		return ErrNoPayer
	}
	if len(e.Participants) == 0 {
		return ErrNoParticipants
	}
	return nil
}

func (c Contribution) Validate() error {
	if strings.TrimSpace(c.Flatmate) == "" {
		return ErrEmptyName
	}
	if c.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(c.Month) != 7 || c.Month[4] != '-' {
		return errors.New("month must be in YYYY-MM format")
	}
	return nil
}

func (s ConsumptionSettlement) Validate() error {
	if !s.Type.Valid() {
		return ErrInvalidType
	}
	if s.TotalCost <= 0 && s.CostPerUnit <= 0 {
		return ErrInvalidAmount
	}
	if s.TotalConsumptions <= 0 {
		return ErrNoConsumptionData
	}
	return nil
}

// MonthKey formats a point in time as the "YYYY-MM" bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ConsumptionPaymentID builds the payment key that marks one person's share
// of one settlement as paid.
func ConsumptionPaymentID(settlementID, personKey string) string {
	return "consumption_" + settlementID + "_" + personKey
}

// PairPaymentID builds the payment key for a direct debtor-to-creditor
// settlement.
func PairPaymentID(debtorKey, creditorKey string) string {
	return debtorKey + "_" + creditorKey
}
