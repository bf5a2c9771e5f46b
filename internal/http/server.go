// Package http exposes the household ledger over a JSON API, alongside the
// bank webhook and statement import endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"huishoudpot/internal/bank"
	"huishoudpot/internal/cache"
	"huishoudpot/internal/ledger"
	"huishoudpot/internal/log"
	"huishoudpot/internal/store"
)

// TransactionPublisher hands incoming bank transactions to the message
// broker. The webhook handler tolerates a nil publisher; the pending sweep
// picks up whatever was not published.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, tx bank.Transaction) error
}

// Options collects the dependencies of a Server.
type Options struct {
	Addr          string
	Ledger        *ledger.Service
	Store         store.Store
	OAuth         *bank.OAuth
	Publisher     TransactionPublisher
	WebhookSecret string
	Logger        *log.Logger
}

// Server wires handlers, middleware and caches around the ledger service.
type Server struct {
	http.Server

	ledger        *ledger.Service
	store         store.Store
	importer      *bank.Importer
	oauth         *bank.OAuth
	publisher     TransactionPublisher
	webhookSecret string
	logger        *log.Logger

	rateLimiter *rateLimiter
	metrics     securityMetrics

	positionsCache *cache.LRUCache[[]ledger.NetPosition]
	matrixCache    *cache.LRUCache[map[string][]ledger.MonthStatus]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer builds a Server with its routes, caches and rate limiter ready.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:         opts.Ledger,
		store:          opts.Store,
		importer:       bank.NewImporter(opts.Ledger, logger),
		oauth:          opts.OAuth,
		publisher:      opts.Publisher,
		webhookSecret:  opts.WebhookSecret,
		logger:         logger,
		rateLimiter:    newRateLimiter(),
		positionsCache: cache.NewLRUCache[[]ledger.NetPosition](8, 30*time.Second),
		matrixCache:    cache.NewLRUCache[map[string][]ledger.MonthStatus](8, 30*time.Second),
		cacheManager:   cache.NewManager(),
	}
	s.cacheManager.Register(s.positionsCache)
	s.cacheManager.Register(s.matrixCache)
	s.cacheManager.StartCleanup(time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /flatmates", s.wrap(s.handleListFlatmates))
	mux.HandleFunc("POST /flatmates", s.wrap(s.handleAddFlatmate))
	mux.HandleFunc("DELETE /flatmates/{id}", s.wrap(s.handleRemoveFlatmate))

	mux.HandleFunc("GET /expenses", s.wrap(s.handleListExpenses))
	mux.HandleFunc("POST /expenses", s.wrap(s.handleAddExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.wrap(s.handleEditExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.wrap(s.handleDeleteExpense))

	mux.HandleFunc("GET /balances", s.wrap(s.handleListBalances))
	mux.HandleFunc("POST /balances/reset", s.wrap(s.handleResetBalances))
	mux.HandleFunc("GET /categories", s.wrap(s.handleListCategories))

	mux.HandleFunc("GET /contributions", s.wrap(s.handleListContributions))
	mux.HandleFunc("POST /contributions", s.wrap(s.handleAddContribution))
	mux.HandleFunc("GET /contributions/matrix", s.wrap(s.handleContributionMatrix))
	mux.HandleFunc("GET /contributions/summary", s.wrap(s.handleContributionSummary))

	mux.HandleFunc("GET /settlements", s.wrap(s.handleListSettlements))
	mux.HandleFunc("POST /settlements", s.wrap(s.handleAddSettlement))
	mux.HandleFunc("DELETE /settlements/{id}", s.wrap(s.handleDeleteSettlement))
	mux.HandleFunc("POST /settlements/{id}/payments/{person}", s.wrap(s.handleToggleConsumptionPayment))
	mux.HandleFunc("POST /payments/pair", s.wrap(s.handleTogglePairPayment))

	mux.HandleFunc("GET /positions", s.wrap(s.handleNetPositions))

	mux.HandleFunc("POST /webhooks/rabobank", s.wrap(s.handleBankWebhook))
	mux.HandleFunc("POST /import/csv", s.wrap(s.handleImportCSV))
	mux.HandleFunc("GET /bank/link", s.wrap(s.handleBankLink))
	mux.HandleFunc("GET /bank/callback", s.wrap(s.handleBankCallback))

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// wrap adds security headers, rate limiting and request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := log.IntoContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, &s.metrics) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		setSecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLogger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// invalidateCaches drops cached aggregates after any mutation so the next
// dashboard read recomputes from the store.
func (s *Server) invalidateCaches() {
	s.positionsCache.Flush()
	s.matrixCache.Flush()
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.List(r.Context(), store.Flatmates); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store not ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
