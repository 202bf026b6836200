package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, jti, err := IssueToken(secret, "user-1", "ravi@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if jti == "" {
		t.Error("expected non-empty jti")
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject 'user-1', got '%s'", claims.Subject)
	}
	if claims.Email != "ravi@example.com" {
		t.Errorf("expected email 'ravi@example.com', got '%s'", claims.Email)
	}
	if claims.ID != jti {
		t.Errorf("expected jti '%s', got '%s'", jti, claims.ID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := IssueToken([]byte("secret-a"), "user-1", "a@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	_, err = ParseToken([]byte("secret-b"), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, _, err := IssueToken(secret, "user-1", "a@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	_, err = ParseToken(secret, token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken([]byte("test-secret"), "not.a.token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
