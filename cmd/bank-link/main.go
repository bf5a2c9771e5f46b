// bank-link performs the one-time OAuth authorization against the bank and
// saves the resulting token for the API process.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"huishoudpot/internal/bank"
	"huishoudpot/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.BankOAuthClientID == "" || cfg.BankOAuthSecret == "" {
		log.Fatalf("set BANK_OAUTH_CLIENT_ID and BANK_OAUTH_CLIENT_SECRET")
	}

	// Start local server for the redirect URI, default
	// http://localhost:8085/callback. The bank's client registration must
	// include this URI.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	redirectURL := "http://localhost:" + redirectPort + "/callback"

	oauth := bank.NewOAuth(bank.OAuthConfig{
		ClientID:     cfg.BankOAuthClientID,
		ClientSecret: cfg.BankOAuthSecret,
		AuthURL:      cfg.BankOAuthAuthURL,
		TokenURL:     cfg.BankOAuthTokenURL,
		RedirectURL:  redirectURL,
		JWTSecret:    cfg.JWTSecret,
	})

	state, err := bank.NewState()
	if err != nil {
		log.Fatalf("generate state: %v", err)
	}

	type callback struct {
		state string
		code  string
	}
	codeCh := make(chan callback, 1)
	srv := &http.Server{Addr: ":" + redirectPort}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- callback{
			state: r.URL.Query().Get("state"),
			code:  r.URL.Query().Get("code"),
		}
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	fmt.Printf("Open this URL to authorize:\n%s\n", oauth.AuthURL(state))

	select {
	case cb := <-codeCh:
		tok, err := oauth.Exchange(context.Background(), cb.state, state, cb.code)
		if err != nil {
			log.Fatalf("token exchange: %v", err)
		}

		outFile := os.Getenv("BANK_OAUTH_TOKEN_FILE")
		if outFile == "" {
			outFile = "token.json"
		}
		f, err := os.OpenFile(outFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
		if err != nil {
			log.Fatalf("open token file: %v", err)
		}
		defer f.Close()
		if err := json.NewEncoder(f).Encode(tok); err != nil {
			log.Fatalf("write token: %v", err)
		}
		fmt.Printf("Saved token to %s\n", outFile)
	case <-time.After(5 * time.Minute):
		log.Fatalf("authorization timed out")
	case <-signalChan():
		log.Fatalf("interrupted")
	}
}

func signalChan() <-chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	return c
}
