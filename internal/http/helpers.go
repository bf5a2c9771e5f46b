package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"huishoudpot/internal/core"
	"huishoudpot/internal/store"
)

// maxBodyBytes caps request bodies. Bank statement uploads are the largest
// legitimate payload and stay well under this.
const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP statuses and writes a JSON body.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *core.ValidationError
		permissionErr *core.PermissionError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &permissionErr):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// requestActor builds the acting identity for a request. The household app
// trusts its local network; the actor name is taken from a header so audit
// fields record who clicked, while permissions stay uniform.
func requestActor(r *http.Request) core.Actor {
	name := sanitizeInput(r.Header.Get("X-Actor-Name"))
	if name == "" {
		name = "web"
	}
	return core.Actor{
		ID:   "web",
		Name: name,
		Permissions: map[core.Permission]bool{
			core.PermAddExpense: true, core.PermEditExpense: true,
			core.PermDeleteExpense: true, core.PermAddFlatmate: true,
			core.PermRemoveFlatmate: true, core.PermResetBalances: true,
			core.PermImportData: true,
		},
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
