package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"huishoudpot/internal/amqp"
	"huishoudpot/internal/backend"
	"huishoudpot/internal/bank"
	"huishoudpot/internal/config"
	apphttp "huishoudpot/internal/http"
	"huishoudpot/internal/ledger"
	"huishoudpot/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Backend configuration failed", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", log.FieldError, err)
		}
	}()

	svc := ledger.New(result.Store, logger, cfg.RequiredContribution)

	// The broker is optional for the API process. Webhook transactions are
	// persisted as pending before publishing, so the sweep in the worker
	// covers a missing broker.
	var publisher apphttp.TransactionPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, webhook transactions stay pending", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	var oauth *bank.OAuth
	if cfg.BankOAuthClientID != "" {
		oauth = bank.NewOAuth(bank.OAuthConfig{
			ClientID:     cfg.BankOAuthClientID,
			ClientSecret: cfg.BankOAuthSecret,
			AuthURL:      cfg.BankOAuthAuthURL,
			TokenURL:     cfg.BankOAuthTokenURL,
			RedirectURL:  cfg.BankOAuthRedirect,
			JWTSecret:    cfg.JWTSecret,
		})
		logger.Info("Bank linking enabled")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:          ":" + cfg.Port,
		Ledger:        svc,
		Store:         result.Store,
		OAuth:         oauth,
		Publisher:     publisher,
		WebhookSecret: cfg.WebhookSecret,
		Logger:        logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting huishoudpot server",
		"port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
