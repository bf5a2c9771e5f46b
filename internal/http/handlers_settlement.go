package http

import (
	"net/http"
	"time"

	"huishoudpot/internal/core"
	"huishoudpot/internal/ledger"
)

type contributionRequest struct {
	Flatmate    string  `json:"flatmate"`
	Amount      float64 `json:"amount"`
	Month       string  `json:"month"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp"`
}

type settlementRequest struct {
	Type            string         `json:"type"`
	Date            string         `json:"date"`
	TotalCost       float64        `json:"totalCost"`
	ConsumptionData map[string]int `json:"consumptionData"`
	Notes           string         `json:"notes"`
}

type pairPaymentRequest struct {
	Debtor   string  `json:"debtor"`
	Creditor string  `json:"creditor"`
	Amount   float64 `json:"amount"`
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := s.ledger.Contributions(r.Context())
	if err != nil {
		s.logError(r, "List contributions failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contributions)
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	in := ledger.ContributionInput{
		Flatmate:    sanitizeInput(req.Flatmate),
		Amount:      req.Amount,
		Month:       sanitizeInput(req.Month),
		Source:      core.SourceManual,
		Description: sanitizeInput(req.Description),
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid timestamp, want RFC 3339"})
			return
		}
		in.Timestamp = ts
	}

	contribution, err := s.ledger.AddContribution(r.Context(), requestActor(r), in)
	if err != nil {
		s.logError(r, "Add contribution failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, contribution)
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.ledger.Settlements(r.Context())
	if err != nil {
		s.logError(r, "List settlements failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlements)
}

func (s *Server) handleAddSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	in := ledger.SettlementInput{
		Type:            core.ConsumptionType(req.Type),
		TotalCost:       req.TotalCost,
		ConsumptionData: req.ConsumptionData,
		Notes:           sanitizeInput(req.Notes),
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, want YYYY-MM-DD"})
			return
		}
		in.Date = date
	}

	settlement, err := s.ledger.AddSettlement(r.Context(), requestActor(r), in)
	if err != nil {
		s.logError(r, "Add settlement failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, settlement)
}

func (s *Server) handleDeleteSettlement(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteSettlement(r.Context(), requestActor(r), r.PathValue("id")); err != nil {
		s.logError(r, "Delete settlement failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleConsumptionPayment(w http.ResponseWriter, r *http.Request) {
	settlementID := r.PathValue("id")
	personKey := r.PathValue("person")

	settlements, err := s.ledger.Settlements(r.Context())
	if err != nil {
		s.logError(r, "Load settlements failed", err)
		writeError(w, err)
		return
	}
	settlement, ok := settlements[settlementID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown settlement"})
		return
	}

	amount := float64(settlement.ConsumptionData[personKey]) * settlement.CostPerUnit
	payment, err := s.ledger.ToggleConsumptionPayment(r.Context(), requestActor(r), settlementID, personKey, amount)
	if err != nil {
		s.logError(r, "Toggle consumption payment failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) handleTogglePairPayment(w http.ResponseWriter, r *http.Request) {
	var req pairPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Debtor == "" || req.Creditor == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "debtor and creditor are required"})
		return
	}

	payment, err := s.ledger.TogglePairPayment(r.Context(), requestActor(r), req.Debtor, req.Creditor, req.Amount)
	if err != nil {
		s.logError(r, "Toggle pair payment failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, payment)
}
