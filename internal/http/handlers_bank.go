package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"huishoudpot/internal/bank"
	"huishoudpot/internal/log"
	"huishoudpot/internal/store"
)

// SignatureHeader carries the hex HMAC-SHA256 of the webhook body.
const SignatureHeader = "X-Webhook-Signature"

const sessionTokenTTL = 24 * time.Hour

type webhookResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
}

type importResponse struct {
	Contributions int `json:"contributions"`
	Expenses      int `json:"expenses"`
	Skipped       int `json:"skipped"`
}

type sessionResponse struct {
	SessionToken string `json:"sessionToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// handleBankWebhook receives push notifications from the bank. Transactions
// are persisted to the pending collection before any publish attempt, so a
// broker outage can never lose a notification.
func (s *Server) handleBankWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable body"})
		return
	}

	if !bank.VerifySignature(s.webhookSecret, body, r.Header.Get(SignatureHeader)) {
		atomic.AddInt64(&s.metrics.invalidSignatures, 1)
		logger.WarnContext(ctx, "Webhook signature rejected",
			log.FieldClientIP, extractClientIP(r))
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
		return
	}

	var event bank.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed event"})
		return
	}

	switch event.EventType {
	case bank.EventTransactionCreated:
		if event.Transaction == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "event missing transaction"})
			return
		}
		tx, err := event.Transaction.Normalize()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		if err := store.PutDoc(ctx, s.store, store.PendingTransactions, tx.ID, tx); err != nil {
			s.logError(r, "Persist pending transaction failed", err)
			writeError(w, err)
			return
		}

		if s.publisher != nil {
			if err := s.publisher.PublishTransaction(ctx, tx); err != nil {
				// The pending sweep will import it instead.
				logger.WarnContext(ctx, "Publish failed, transaction left pending",
					log.FieldTransactionID, tx.ID, log.FieldError, err)
			}
		}

		writeJSON(w, http.StatusAccepted, webhookResponse{Status: "accepted", TransactionID: tx.ID})

	case bank.EventAccountBalanceUpdated:
		if event.Balance != nil {
			logger.InfoContext(ctx, "Account balance updated",
				log.FieldAmount, event.Balance.Amount.Value)
		}
		writeJSON(w, http.StatusOK, webhookResponse{Status: "noted"})

	default:
		logger.InfoContext(ctx, "Ignoring unknown webhook event", "event_type", event.EventType)
		writeJSON(w, http.StatusOK, webhookResponse{Status: "ignored"})
	}
}

// handleImportCSV ingests an exported bank statement. The file comes either
// as a multipart field named "statement" or as the raw request body.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	var reader io.Reader = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("statement")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing statement file"})
			return
		}
		defer file.Close()
		reader = file
	}

	txs, err := bank.ParseCSV(reader)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	summary, err := s.importer.Import(r.Context(), txs)
	if err != nil {
		s.logError(r, "Statement import failed", err)
		writeError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, importResponse{
		Contributions: summary.Contributions,
		Expenses:      summary.Expenses,
		Skipped:       summary.Skipped,
	})
}

// handleBankLink starts the OAuth flow against the bank. The state nonce is
// stored in a short-lived cookie and checked on callback.
func (s *Server) handleBankLink(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "bank linking not configured"})
		return
	}

	state, err := bank.NewState()
	if err != nil {
		s.logError(r, "State generation failed", err)
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "bank_oauth_state",
		Value:    state,
		Path:     "/bank",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthURL(state), http.StatusFound)
}

func (s *Server) handleBankCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "bank linking not configured"})
		return
	}

	cookie, err := r.Cookie("bank_oauth_state")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing state cookie"})
		return
	}

	token, err := s.oauth.Exchange(r.Context(),
		r.URL.Query().Get("state"), cookie.Value, r.URL.Query().Get("code"))
	if err != nil {
		s.logError(r, "OAuth exchange failed", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "authorization failed"})
		return
	}

	session, err := s.oauth.SessionToken("bank-link", sessionTokenTTL)
	if err != nil {
		s.logError(r, "Session token issue failed", err)
		writeError(w, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Bank account linked",
		"token_expiry", token.Expiry)
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionToken: session,
		ExpiresIn:    int(sessionTokenTTL.Seconds()),
	})
}
