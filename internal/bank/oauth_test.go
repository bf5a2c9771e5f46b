package bank

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestOAuth() *OAuth {
	return NewOAuth(OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      "https://bank.example/oauth2/authorize",
		TokenURL:     "https://bank.example/oauth2/token",
		RedirectURL:  "http://localhost:8081/auth/bank/callback",
		JWTSecret:    "session-secret",
	})
}

func TestAuthURLCarriesState(t *testing.T) {
	o := newTestOAuth()
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	if len(state) != 32 {
		t.Errorf("state length = %d, want 32 hex chars", len(state))
	}

	url := o.AuthURL(state)
	if !strings.Contains(url, "state="+state) {
		t.Errorf("auth url missing state: %s", url)
	}
	if !strings.Contains(url, "client_id=client-id") {
		t.Errorf("auth url missing client id: %s", url)
	}
}

func TestExchangeRejectsStateMismatch(t *testing.T) {
	o := newTestOAuth()
	if _, err := o.Exchange(context.Background(), "other", "expected", "code"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if _, err := o.Exchange(context.Background(), "", "", "code"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("empty state must be rejected, got %v", err)
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	o := newTestOAuth()

	token, err := o.SessionToken("household", time.Hour)
	if err != nil {
		t.Fatalf("SessionToken failed: %v", err)
	}

	subject, err := o.VerifySession(token)
	if err != nil {
		t.Fatalf("VerifySession failed: %v", err)
	}
	if subject != "household" {
		t.Errorf("subject = %q, want household", subject)
	}
}

func TestVerifySessionRejectsBadTokens(t *testing.T) {
	o := newTestOAuth()

	if _, err := o.VerifySession("not.a.token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}

	expired, err := o.SessionToken("household", -time.Hour)
	if err != nil {
		t.Fatalf("SessionToken failed: %v", err)
	}
	if _, err := o.VerifySession(expired); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired token must be rejected, got %v", err)
	}

	other := NewOAuth(OAuthConfig{JWTSecret: "different-secret"})
	token, err := other.SessionToken("household", time.Hour)
	if err != nil {
		t.Fatalf("SessionToken failed: %v", err)
	}
	if _, err := o.VerifySession(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("token signed with another secret must be rejected, got %v", err)
	}
}
