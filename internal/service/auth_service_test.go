package service

import (
	"errors"
	"strings"
	"testing"

	"splenderra/internal/config"
)

func newTestAuthService() *AuthService {
	return NewAuthService(&config.Config{
		HostUsername: "admin",
		HostPassword: "pw",
		JWTSecret:    "test-secret",
	})
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService()

	resp, err := svc.Login("admin", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if !strings.HasPrefix(resp.HostID, "host_") {
		t.Fatalf("unexpected host id: %q", resp.HostID)
	}

	claims, err := svc.ValidateHostToken(resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.HostID != resp.HostID {
		t.Fatalf("expected host id %q, got %q", resp.HostID, claims.HostID)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestAuthService()

	if _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("nobody", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPlayerTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService()

	token, err := svc.GeneratePlayerToken("ABC123", "p_01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidatePlayerToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.GameCode != "ABC123" || claims.PlayerID != "p_01" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService()

	if _, err := svc.ValidatePlayerToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.ValidateHostToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// Token signed with a different secret must be rejected
	other := NewAuthService(&config.Config{JWTSecret: "other-secret"})
	token, err := other.GeneratePlayerToken("ABC123", "p_01")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidatePlayerToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
