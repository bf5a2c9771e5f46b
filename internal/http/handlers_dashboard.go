package http

import (
	"net/http"

	"huishoudpot/internal/log"
)

// Cache keys for the dashboard aggregates. Both caches hold a single entry;
// the LRU bound exists so a burst of refreshes cannot grow memory.
const (
	cacheKeyPositions = "net_positions"
	cacheKeyMatrix    = "contribution_matrix"
)

func (s *Server) handleNetPositions(w http.ResponseWriter, r *http.Request) {
	if positions, ok := s.positionsCache.Get(cacheKeyPositions); ok {
		writeJSON(w, http.StatusOK, positions)
		return
	}

	positions, err := s.ledger.NetPositions(r.Context())
	if err != nil {
		s.logError(r, "Net positions failed", err)
		writeError(w, err)
		return
	}

	s.positionsCache.Set(cacheKeyPositions, positions)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Net positions recomputed",
		"people", len(positions))
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleContributionMatrix(w http.ResponseWriter, r *http.Request) {
	if matrix, ok := s.matrixCache.Get(cacheKeyMatrix); ok {
		writeJSON(w, http.StatusOK, matrix)
		return
	}

	matrix, err := s.ledger.ContributionMatrix(r.Context())
	if err != nil {
		s.logError(r, "Contribution matrix failed", err)
		writeError(w, err)
		return
	}

	s.matrixCache.Set(cacheKeyMatrix, matrix)
	writeJSON(w, http.StatusOK, matrix)
}

func (s *Server) handleContributionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.ContributionSummary(r.Context())
	if err != nil {
		s.logError(r, "Contribution summary failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
