package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManagerGenerateAndParse(t *testing.T) {
	manager := NewJWTManager("top-secret", time.Minute)

	token, expiresAt, err := manager.Generate("ops@kidsevents", RoleAdmin)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token to be non-empty")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatalf("expected expiry in the future")
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.Subject != "ops@kidsevents" {
		t.Fatalf("expected subject ops@kidsevents, got %q", claims.Subject)
	}
	if !claims.IsAdmin() {
		t.Fatalf("expected admin role claim")
	}
}

func TestJWTManagerParseExpiredToken(t *testing.T) {
	manager := NewJWTManager("secret", -time.Minute)
	token, _, err := manager.Generate("ops", RoleAdmin)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected parse error for expired token")
	}
}

func TestJWTManagerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTManager("one", time.Minute).Generate("ops", RoleAdmin)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := NewJWTManager("two", time.Minute).Parse(token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestJWTManagerRequiresExpiry(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: RoleAdmin})
	token, err := raw.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString returned error: %v", err)
	}
	if _, err := NewJWTManager("secret", time.Minute).Parse(token); err == nil {
		t.Fatalf("expected error for token without exp")
	}
}
