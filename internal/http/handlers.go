package http

import (
	"net/http"
	"sort"

	"huishoudpot/internal/core"
	"huishoudpot/internal/ledger"
	"huishoudpot/internal/log"
)

type flatmateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type expenseRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	PaidBy   string  `json:"paidBy"`
}

type expenseResponse struct {
	Expense core.Expense   `json:"expense"`
	Deltas  []ledgerDeltas `json:"deltas"`
}

type ledgerDeltas struct {
	PersonKey string  `json:"personKey"`
	Change    float64 `json:"change"`
}

func (s *Server) handleListFlatmates(w http.ResponseWriter, r *http.Request) {
	people, err := s.ledger.Flatmates(r.Context())
	if err != nil {
		s.logError(r, "List flatmates failed", err)
		writeError(w, err)
		return
	}

	list := make([]core.Person, 0, len(people))
	for _, p := range people {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].FullName() < list[j].FullName() })
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddFlatmate(w http.ResponseWriter, r *http.Request) {
	var req flatmateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	person, err := s.ledger.AddFlatmate(r.Context(), requestActor(r),
		sanitizeInput(req.FirstName), sanitizeInput(req.LastName))
	if err != nil {
		s.logError(r, "Add flatmate failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, person)
}

func (s *Server) handleRemoveFlatmate(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveFlatmate(r.Context(), requestActor(r), r.PathValue("id")); err != nil {
		s.logError(r, "Remove flatmate failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.Expenses(r.Context())
	if err != nil {
		s.logError(r, "List expenses failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeExpense(w, r)
	if !ok {
		return
	}

	expense, deltas, err := s.ledger.AddExpense(r.Context(), requestActor(r), in)
	if err != nil {
		s.logError(r, "Add expense failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	resp := expenseResponse{Expense: expense, Deltas: make([]ledgerDeltas, 0, len(deltas))}
	for _, d := range deltas {
		resp.Deltas = append(resp.Deltas, ledgerDeltas{PersonKey: d.PersonKey, Change: d.Change})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeExpense(w, r)
	if !ok {
		return
	}

	expense, err := s.ledger.EditExpense(r.Context(), requestActor(r), r.PathValue("id"), in)
	if err != nil {
		s.logError(r, "Edit expense failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteExpense(r.Context(), requestActor(r), r.PathValue("id")); err != nil {
		s.logError(r, "Delete expense failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.Balances(r.Context())
	if err != nil {
		s.logError(r, "List balances failed", err)
		writeError(w, err)
		return
	}

	list := make([]core.Balance, 0, len(balances))
	for _, b := range balances {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PersonKey < list[j].PersonKey })
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleResetBalances(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ResetBalances(r.Context(), requestActor(r)); err != nil {
		s.logError(r, "Reset balances failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.Categories)
}

func (s *Server) decodeExpense(w http.ResponseWriter, r *http.Request) (ledger.ExpenseInput, bool) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return ledger.ExpenseInput{}, false
	}

	return ledger.ExpenseInput{
		Name:     sanitizeInput(req.Name),
		Amount:   req.Amount,
		Category: core.Category(req.Category),
		PaidBy:   sanitizeInput(req.PaidBy),
		Source:   core.SourceManual,
	}, true
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), msg,
		log.FieldPath, r.URL.Path, log.FieldError, err)
}
