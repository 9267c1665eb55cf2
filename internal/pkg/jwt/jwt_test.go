package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	id := uuid.New()

	token, err := svc.GenerateSessionToken(id, "registered")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.AccountID != id {
		t.Fatalf("account id: %s", claims.AccountID)
	}
	if claims.Partition != "registered" {
		t.Fatalf("partition: %s", claims.Partition)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	token, err := svc.GenerateSessionToken(uuid.New(), "guest")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.ValidateSessionToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewService("secret-a", time.Hour).GenerateSessionToken(uuid.New(), "registered")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewService("secret-b", time.Hour).ValidateSessionToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	if _, err := svc.ValidateSessionToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
