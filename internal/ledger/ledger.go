// Package ledger implements the household money engine: expense splitting,
// running balances, monthly contributions, consumption settlements and the
// combined net positions.
//
// All mutations go through Service, which serializes them with a single
// mutex. Multi-document writes are not transactional; a storage failure
// mid-sequence surfaces as a PersistenceError and no compensating writes
// are attempted.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"huishoudpot/internal/core"
	"huishoudpot/internal/log"
	"huishoudpot/internal/store"
)

// Service is the single entry point for household mutations and reads.
type Service struct {
	store    store.Store
	logger   *log.Logger
	required float64

	mu    sync.Mutex
	newID func() string
	now   func() time.Time
}

// ExpenseInput carries the caller-supplied fields of a new or edited
// expense. Participants and split are derived, never accepted.
type ExpenseInput struct {
	Name      string
	Amount    float64
	Category  core.Category
	PaidBy    string
	Source    string
	Timestamp time.Time
}

// ContributionInput carries a new house-fund payment.
type ContributionInput struct {
	Flatmate    string
	Amount      float64
	Timestamp   time.Time
	Month       string
	Source      string
	Description string
}

// SettlementInput carries a new consumption settlement round.
type SettlementInput struct {
	Type            core.ConsumptionType
	Date            time.Time
	TotalCost       float64
	ConsumptionData map[string]int
	Notes           string
}

func New(s store.Store, logger *log.Logger, requiredContribution float64) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if requiredContribution <= 0 {
		requiredContribution = 10.00
	}
	return &Service{
		store:    s,
		logger:   logger.WithComponent(log.ComponentLedger),
		required: requiredContribution,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// RequiredContribution returns the monthly amount each person owes the fund.
func (s *Service) RequiredContribution() float64 {
	return s.required
}

// AddFlatmate registers a household member and opens their balance at zero.
func (s *Service) AddFlatmate(ctx context.Context, actor core.Actor, firstName, lastName string) (core.Person, error) {
	if !actor.Can(core.PermAddFlatmate) {
		return core.Person{}, &core.PermissionError{Actor: actor.Name, Permission: core.PermAddFlatmate}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	person := core.Person{
		ID:        s.newID(),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		JoinedAt:  s.now(),
	}
	if err := person.Validate(); err != nil {
		return core.Person{}, &core.ValidationError{Field: "flatmate", Err: err}
	}

	if err := store.PutDoc(ctx, s.store, store.Flatmates, person.ID, person); err != nil {
		return core.Person{}, &core.PersistenceError{Op: "add flatmate", Err: err}
	}
	balance := core.Balance{PersonKey: person.ID, Balance: 0}
	if err := store.PutDoc(ctx, s.store, store.Balances, person.ID, balance); err != nil {
		return core.Person{}, &core.PersistenceError{Op: "open balance", Err: err}
	}

	s.logger.Info("flatmate added", log.FieldFlatmate, person.FullName(), log.FieldActor, actor.Name)
	return person, nil
}

// RemoveFlatmate deletes a member and their balance. Stored expenses keep
// their participant lists, so past splits stay reversible.
func (s *Service) RemoveFlatmate(ctx context.Context, actor core.Actor, personID string) error {
	if !actor.Can(core.PermRemoveFlatmate) {
		return &core.PermissionError{Actor: actor.Name, Permission: core.PermRemoveFlatmate}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := store.GetDoc[core.Person](ctx, s.store, store.Flatmates, personID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &core.ValidationError{Field: "flatmate", Err: errors.New("unknown flatmate")}
		}
		return &core.PersistenceError{Op: "load flatmate", Err: err}
	}

	if err := s.store.Delete(ctx, store.Flatmates, personID); err != nil {
		return &core.PersistenceError{Op: "remove flatmate", Err: err}
	}
	if err := s.store.Delete(ctx, store.Balances, personID); err != nil {
		return &core.PersistenceError{Op: "remove balance", Err: err}
	}

	s.logger.Info("flatmate removed", log.FieldFlatmate, personID, log.FieldActor, actor.Name)
	return nil
}

// ResetBalances zeroes every running balance. Expense history is untouched.
func (s *Service) ResetBalances(ctx context.Context, actor core.Actor) error {
	if !actor.Can(core.PermResetBalances) {
		return &core.PermissionError{Actor: actor.Name, Permission: core.PermResetBalances}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balances, err := store.ListDocs[core.Balance](ctx, s.store, store.Balances)
	if err != nil {
		return &core.PersistenceError{Op: "load balances", Err: err}
	}
	for key, bal := range balances {
		bal.Balance = 0
		if err := store.PutDoc(ctx, s.store, store.Balances, key, bal); err != nil {
			return &core.PersistenceError{Op: "reset balance " + key, Err: err}
		}
	}

	s.logger.Warn("all balances reset", log.FieldActor, actor.Name)
	return nil
}

// AddExpense records a shared cost split evenly across every current
// flatmate and applies the resulting balance changes.
func (s *Service) AddExpense(ctx context.Context, actor core.Actor, in ExpenseInput) (core.Expense, []Delta, error) {
	if !actor.Can(core.PermAddExpense) {
		return core.Expense{}, nil, &core.PermissionError{Actor: actor.Name, Permission: core.PermAddExpense}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participants, err := s.participantKeys(ctx)
	if err != nil {
		return core.Expense{}, nil, err
	}
	expense, err := s.buildExpense(in, participants)
	if err != nil {
		return core.Expense{}, nil, err
	}
	expense.Timestamp = in.Timestamp
	if expense.Timestamp.IsZero() {
		expense.Timestamp = s.now()
	}

	if err := store.PutDoc(ctx, s.store, store.Expenses, expense.ID, expense); err != nil {
		return core.Expense{}, nil, &core.PersistenceError{Op: "store expense", Err: err}
	}
	deltas := expenseDeltas(expense)
	if err := s.adjustBalances(ctx, deltas); err != nil {
		return core.Expense{}, nil, err
	}

	s.logger.Info("expense added",
		log.FieldExpenseID, expense.ID,
		log.FieldAmount, core.FormatEuros(expense.Amount),
		log.FieldCategory, string(expense.Category),
		log.FieldActor, actor.Name)
	return expense, deltas, nil
}

// EditExpense reverses the stored split and applies the new data across the
// current household. The original timestamp is kept; only EditedAt moves.
func (s *Service) EditExpense(ctx context.Context, actor core.Actor, expenseID string, in ExpenseInput) (core.Expense, error) {
	if !actor.Can(core.PermEditExpense) {
		return core.Expense{}, &core.PermissionError{Actor: actor.Name, Permission: core.PermEditExpense}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	original, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return core.Expense{}, err
	}

	participants, err := s.participantKeys(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	updated, err := s.buildExpense(in, participants)
	if err != nil {
		return core.Expense{}, err
	}
	updated.ID = original.ID
	updated.Timestamp = original.Timestamp
	updated.EditedAt = s.now()

	if err := s.adjustBalances(ctx, reverseDeltas(original)); err != nil {
		return core.Expense{}, err
	}
	if err := store.PutDoc(ctx, s.store, store.Expenses, updated.ID, updated); err != nil {
		return core.Expense{}, &core.PersistenceError{Op: "store expense", Err: err}
	}
	if err := s.adjustBalances(ctx, expenseDeltas(updated)); err != nil {
		return core.Expense{}, err
	}

	s.logger.Info("expense edited",
		log.FieldExpenseID, updated.ID,
		log.FieldAmount, core.FormatEuros(updated.Amount),
		log.FieldActor, actor.Name)
	return updated, nil
}

// DeleteExpense removes an expense and reverses its stored split exactly.
func (s *Service) DeleteExpense(ctx context.Context, actor core.Actor, expenseID string) error {
	if !actor.Can(core.PermDeleteExpense) {
		return &core.PermissionError{Actor: actor.Name, Permission: core.PermDeleteExpense}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	if err := s.adjustBalances(ctx, reverseDeltas(expense)); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.Expenses, expenseID); err != nil {
		return &core.PersistenceError{Op: "delete expense", Err: err}
	}

	s.logger.Info("expense deleted", log.FieldExpenseID, expenseID, log.FieldActor, actor.Name)
	return nil
}

// AddContribution records a payment into the house fund and credits the
// payer's running balance when the flatmate name resolves to a member.
func (s *Service) AddContribution(ctx context.Context, actor core.Actor, in ContributionInput) (core.Contribution, error) {
	if !actor.Can(core.PermAddExpense) {
		return core.Contribution{}, &core.PermissionError{Actor: actor.Name, Permission: core.PermAddExpense}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contribution := core.Contribution{
		ID:          s.newID(),
		Flatmate:    strings.TrimSpace(in.Flatmate),
		Amount:      in.Amount,
		Timestamp:   in.Timestamp,
		Month:       in.Month,
		Source:      in.Source,
		Description: in.Description,
	}
	if contribution.Timestamp.IsZero() && contribution.Month == "" {
		contribution.Timestamp = s.now()
	}
	if contribution.Month == "" {
		contribution.Month = core.MonthKey(contribution.Timestamp)
	}
	if contribution.Source == "" {
		contribution.Source = core.SourceManual
	}
	if err := contribution.Validate(); err != nil {
		return core.Contribution{}, &core.ValidationError{Field: "contribution", Err: err}
	}

	if err := store.PutDoc(ctx, s.store, store.MonthlyContributions, contribution.ID, contribution); err != nil {
		return core.Contribution{}, &core.PersistenceError{Op: "store contribution", Err: err}
	}

	// Dual write: besides the contribution record, the payer's running
	// balance is credited. Unresolvable names (bank imports) skip this.
	people, err := store.ListDocs[core.Person](ctx, s.store, store.Flatmates)
	if err != nil {
		return core.Contribution{}, &core.PersistenceError{Op: "load flatmates", Err: err}
	}
	if key, ok := resolveFlatmate(contribution.Flatmate, people); ok {
		if err := s.adjustBalances(ctx, []Delta{{PersonKey: key, Change: contribution.Amount}}); err != nil {
			return core.Contribution{}, err
		}
	} else if contribution.Flatmate != core.UnassignedFlatmate {
		s.logger.Warn("contribution flatmate not resolved, balance not credited",
			log.FieldFlatmate, contribution.Flatmate, log.FieldMonth, contribution.Month)
	}

	s.logger.Info("contribution added",
		log.FieldFlatmate, contribution.Flatmate,
		log.FieldAmount, core.FormatEuros(contribution.Amount),
		log.FieldMonth, contribution.Month,
		log.FieldSource, contribution.Source)
	return contribution, nil
}

// AddSettlement records one consumption settlement round. Cost per unit is
// derived from the total when given, otherwise the type default applies.
func (s *Service) AddSettlement(ctx context.Context, actor core.Actor, in SettlementInput) (core.ConsumptionSettlement, error) {
	if !actor.Can(core.PermAddExpense) {
		return core.ConsumptionSettlement{}, &core.PermissionError{Actor: actor.Name, Permission: core.PermAddExpense}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, count := range in.ConsumptionData {
		if count < 0 {
			return core.ConsumptionSettlement{}, &core.ValidationError{Field: "consumptionData", Err: core.ErrInvalidAmount}
		}
		total += count
	}

	settlement := core.ConsumptionSettlement{
		ID:                s.newID(),
		Type:              in.Type,
		Date:              in.Date,
		TotalCost:         in.TotalCost,
		ConsumptionData:   in.ConsumptionData,
		TotalConsumptions: total,
		Notes:             in.Notes,
		CreatedAt:         s.now(),
	}
	if settlement.Date.IsZero() {
		settlement.Date = settlement.CreatedAt
	}
	switch {
	case in.TotalCost > 0 && total > 0:
		settlement.CostPerUnit = in.TotalCost / float64(total)
	default:
		settlement.CostPerUnit = core.ConsumptionTypes[in.Type].DefaultCostPerUnit
		settlement.TotalCost = settlement.CostPerUnit * float64(total)
	}
	if err := settlement.Validate(); err != nil {
		return core.ConsumptionSettlement{}, &core.ValidationError{Field: "settlement", Err: err}
	}

	if err := store.PutDoc(ctx, s.store, store.ConsumptionSettlements, settlement.ID, settlement); err != nil {
		return core.ConsumptionSettlement{}, &core.PersistenceError{Op: "store settlement", Err: err}
	}

	s.logger.Info("settlement added",
		log.FieldSettlementID, settlement.ID,
		log.FieldCategory, string(settlement.Type),
		log.FieldAmount, core.FormatEuros(settlement.TotalCost))
	return settlement, nil
}

// DeleteSettlement removes a settlement round together with its per-person
// payment toggles.
func (s *Service) DeleteSettlement(ctx context.Context, actor core.Actor, settlementID string) error {
	if !actor.Can(core.PermDeleteExpense) {
		return &core.PermissionError{Actor: actor.Name, Permission: core.PermDeleteExpense}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settlement, err := store.GetDoc[core.ConsumptionSettlement](ctx, s.store, store.ConsumptionSettlements, settlementID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &core.ValidationError{Field: "settlement", Err: errors.New("unknown settlement")}
		}
		return &core.PersistenceError{Op: "load settlement", Err: err}
	}

	for personKey := range settlement.ConsumptionData {
		paymentID := core.ConsumptionPaymentID(settlementID, personKey)
		if err := s.store.Delete(ctx, store.SettlementPayments, paymentID); err != nil {
			return &core.PersistenceError{Op: "delete settlement payment", Err: err}
		}
	}
	if err := s.store.Delete(ctx, store.ConsumptionSettlements, settlementID); err != nil {
		return &core.PersistenceError{Op: "delete settlement", Err: err}
	}

	s.logger.Info("settlement deleted", log.FieldSettlementID, settlementID, log.FieldActor, actor.Name)
	return nil
}

// TogglePairPayment flips the paid flag on a direct debtor-to-creditor
// settlement.
func (s *Service) TogglePairPayment(ctx context.Context, actor core.Actor, debtorKey, creditorKey string, amount float64) (core.SettlementPayment, error) {
	return s.togglePayment(ctx, actor, core.PairPaymentID(debtorKey, creditorKey), amount)
}

// ToggleConsumptionPayment flips the paid flag on one person's share of a
// consumption settlement.
func (s *Service) ToggleConsumptionPayment(ctx context.Context, actor core.Actor, settlementID, personKey string, amount float64) (core.SettlementPayment, error) {
	return s.togglePayment(ctx, actor, core.ConsumptionPaymentID(settlementID, personKey), amount)
}

func (s *Service) togglePayment(ctx context.Context, actor core.Actor, paymentID string, amount float64) (core.SettlementPayment, error) {
	if !actor.Can(core.PermAddExpense) {
		return core.SettlementPayment{}, &core.PermissionError{Actor: actor.Name, Permission: core.PermAddExpense}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payment, err := store.GetDoc[core.SettlementPayment](ctx, s.store, store.SettlementPayments, paymentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return core.SettlementPayment{}, &core.PersistenceError{Op: "load payment", Err: err}
	}

	payment.ID = paymentID
	payment.Paid = !payment.Paid
	payment.Amount = amount
	payment.LastUpdated = s.now()
	payment.UpdatedBy = actor.Name

	if err := store.PutDoc(ctx, s.store, store.SettlementPayments, paymentID, payment); err != nil {
		return core.SettlementPayment{}, &core.PersistenceError{Op: "store payment", Err: err}
	}

	s.logger.Info("payment toggled", "payment_id", paymentID, "paid", payment.Paid, log.FieldActor, actor.Name)
	return payment, nil
}

// Flatmates lists the household, keyed by person id.
func (s *Service) Flatmates(ctx context.Context) (map[string]core.Person, error) {
	people, err := store.ListDocs[core.Person](ctx, s.store, store.Flatmates)
	if err != nil {
		return nil, &core.PersistenceError{Op: "load flatmates", Err: err}
	}
	return people, nil
}

// Expenses lists expenses newest first.
func (s *Service) Expenses(ctx context.Context) ([]core.Expense, error) {
	expenses, err := store.ListOrderedDocs[core.Expense](ctx, s.store, store.Expenses, "timestamp", true)
	if err != nil {
		return nil, &core.PersistenceError{Op: "load expenses", Err: err}
	}
	return expenses, nil
}

// Balances returns every running balance keyed by person id.
func (s *Service) Balances(ctx context.Context) (map[string]core.Balance, error) {
	balances, err := store.ListDocs[core.Balance](ctx, s.store, store.Balances)
	if err != nil {
		return nil, &core.PersistenceError{Op: "load balances", Err: err}
	}
	return balances, nil
}

// Contributions lists every house-fund payment.
func (s *Service) Contributions(ctx context.Context) ([]core.Contribution, error) {
	contributions, err := store.ListDocs[core.Contribution](ctx, s.store, store.MonthlyContributions)
	if err != nil {
		return nil, &core.PersistenceError{Op: "load contributions", Err: err}
	}
	out := make([]core.Contribution, 0, len(contributions))
	for _, c := range contributions {
		out = append(out, c)
	}
	return out, nil
}

// Settlements lists every consumption settlement keyed by id.
func (s *Service) Settlements(ctx context.Context) (map[string]core.ConsumptionSettlement, error) {
	settlements, err := store.ListDocs[core.ConsumptionSettlement](ctx, s.store, store.ConsumptionSettlements)
	if err != nil {
		return nil, &core.PersistenceError{Op: "load settlements", Err: err}
	}
	return settlements, nil
}

// Payments lists every settlement payment toggle keyed by payment id.
func (s *Service) Payments(ctx context.Context) (map[string]core.SettlementPayment, error) {
	payments, err := store.ListDocs[core.SettlementPayment](ctx, s.store, store.SettlementPayments)
	if err != nil {
		return nil, &core.PersistenceError{Op: "load payments", Err: err}
	}
	return payments, nil
}

// NetPositions computes everyone's combined standing as of now.
func (s *Service) NetPositions(ctx context.Context) ([]NetPosition, error) {
	people, err := s.Flatmates(ctx)
	if err != nil {
		return nil, err
	}
	contributions, err := s.Contributions(ctx)
	if err != nil {
		return nil, err
	}
	settlements, err := s.Settlements(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.Payments(ctx)
	if err != nil {
		return nil, err
	}
	return NetPositions(people, contributions, settlements, payments, s.now(), s.required), nil
}

// ContributionMatrix returns the trailing twelve-month standing per person.
func (s *Service) ContributionMatrix(ctx context.Context) (map[string][]MonthStatus, error) {
	people, err := s.Flatmates(ctx)
	if err != nil {
		return nil, err
	}
	contributions, err := s.Contributions(ctx)
	if err != nil {
		return nil, err
	}

	calc := ContributionDebtCalculator{Required: s.required}
	now := s.now()
	out := make(map[string][]MonthStatus, len(people))
	for key, person := range people {
		out[key] = calc.Months(person, contributions, now)
	}
	return out, nil
}

// MonthTotals is the house-fund standing for one month across the whole
// household.
type MonthTotals struct {
	Month     string  `json:"month"`
	Expected  float64 `json:"expected"`
	Collected float64 `json:"collected"`
	Remaining float64 `json:"remaining"`
}

// ContributionSummary aggregates the matrix into per-month totals over the
// trailing twelve months, most recent first. Expected is the required
// contribution times the current household size; a month's overpayment by
// one person does not cover another's shortfall in Remaining.
func (s *Service) ContributionSummary(ctx context.Context) ([]MonthTotals, error) {
	matrix, err := s.ContributionMatrix(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*MonthTotals)
	var order []string
	for _, months := range matrix {
		for _, m := range months {
			t, ok := totals[m.Month]
			if !ok {
				t = &MonthTotals{Month: m.Month}
				totals[m.Month] = t
				order = append(order, m.Month)
			}
			t.Expected += m.Required
			t.Collected += m.Paid
			if short := m.Required - m.Paid; short > 0 {
				t.Remaining += short
			}
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))
	out := make([]MonthTotals, 0, len(order))
	for _, month := range order {
		out = append(out, *totals[month])
	}
	return out, nil
}

func (s *Service) buildExpense(in ExpenseInput, participants []string) (core.Expense, error) {
	if len(participants) == 0 {
		return core.Expense{}, &core.ValidationError{Field: "participants", Err: core.ErrNoParticipants}
	}
	expense := core.Expense{
		ID:           s.newID(),
		Name:         strings.TrimSpace(in.Name),
		Amount:       in.Amount,
		Category:     in.Category,
		PaidBy:       in.PaidBy,
		Participants: participants,
		SplitAmount:  in.Amount / float64(len(participants)),
		Source:       in.Source,
	}
	if expense.Source == "" {
		expense.Source = core.SourceManual
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, &core.ValidationError{Field: "expense", Err: err}
	}
	return expense, nil
}

func (s *Service) loadExpense(ctx context.Context, expenseID string) (core.Expense, error) {
	expense, err := store.GetDoc[core.Expense](ctx, s.store, store.Expenses, expenseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Expense{}, &core.ValidationError{Field: "expense", Err: fmt.Errorf("unknown expense %s", expenseID)}
		}
		return core.Expense{}, &core.PersistenceError{Op: "load expense", Err: err}
	}
	return expense, nil
}

func (s *Service) participantKeys(ctx context.Context) ([]string, error) {
	people, err := store.ListDocs[core.Person](ctx, s.store, store.Flatmates)
	if err != nil {
		return nil, &core.PersistenceError{Op: "load flatmates", Err: err}
	}
	keys := make([]string, 0, len(people))
	for key := range people {
		keys = append(keys, key)
	}
	// Deterministic participant order keeps stored expenses stable.
	sort.Strings(keys)
	return keys, nil
}

// adjustBalances applies deltas to the stored running balances. A missing
// balance doc is treated as zero and created, matching how balances behave
// for people added before balance tracking existed.
func (s *Service) adjustBalances(ctx context.Context, deltas []Delta) error {
	for _, d := range deltas {
		balance, err := store.GetDoc[core.Balance](ctx, s.store, store.Balances, d.PersonKey)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return &core.PersistenceError{Op: "load balance " + d.PersonKey, Err: err}
		}
		balance.PersonKey = d.PersonKey
		balance.Balance += d.Change
		if err := store.PutDoc(ctx, s.store, store.Balances, d.PersonKey, balance); err != nil {
			return &core.PersistenceError{Op: "store balance " + d.PersonKey, Err: err}
		}
	}
	return nil
}

func resolveFlatmate(name string, people map[string]core.Person) (string, bool) {
	for key, person := range people {
		if strings.EqualFold(name, person.FullName()) || strings.EqualFold(name, person.FirstName) {
			return key, true
		}
	}
	return "", false
}
