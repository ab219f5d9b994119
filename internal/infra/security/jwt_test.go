package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := JWTManager{Secret: []byte("test-secret"), TTL: time.Hour}

	token, err := manager.Issue("user-1", true)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "user-1" || !claims.Admin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTRejectsTampering(t *testing.T) {
	manager := JWTManager{Secret: []byte("test-secret"), TTL: time.Hour}

	token, err := manager.Issue("user-1", false)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	other := JWTManager{Secret: []byte("different-secret")}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
	if _, err := manager.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	manager := JWTManager{Secret: []byte("test-secret")}

	past := time.Now().Add(-time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"iat": past.Add(-time.Hour).Unix(),
		"exp": past.Unix(),
	})
	raw, err := expired.SignedString(manager.Secret)
	if err != nil {
		t.Fatalf("SignedString returned error: %v", err)
	}

	if _, err := manager.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTRejectsMissingSubject(t *testing.T) {
	manager := JWTManager{Secret: []byte("test-secret")}

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := anonymous.SignedString(manager.Secret)
	if err != nil {
		t.Fatalf("SignedString returned error: %v", err)
	}

	if _, err := manager.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without a subject, got %v", err)
	}
}
