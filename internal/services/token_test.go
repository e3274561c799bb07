package services

import (
	"testing"
	"time"

	"github.com/carebridgehq/carebridge-backend/internal/models"
)

func testUser() *models.User {
	return &models.User{
		Email: "a@x.com",
		Role:  models.RoleCustomer,
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Fatal("expected token, got empty string")
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if claims.Subject != "a@x.com" {
		t.Errorf("sub = %q, want a@x.com", claims.Subject)
	}
	if claims.Role != models.RoleCustomer {
		t.Errorf("role = %q, want customer", claims.Role)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := &TokenIssuer{secret: []byte("test-secret"), expiry: -time.Minute}

	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("test-secret", time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := NewTokenIssuer("other-secret", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	for _, bad := range []string{"", "garbage", "a.b.c", "a.b"} {
		if _, err := issuer.Verify(bad); err != ErrInvalidToken {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", bad, err)
		}
	}
}

func TestTokenIssuer_TamperedPayload(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	if _, err := issuer.Verify(string(tampered)); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenIssuer_DefaultExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	if issuer.expiry != 60*time.Minute {
		t.Errorf("expiry = %v, want 60m", issuer.expiry)
	}
}
