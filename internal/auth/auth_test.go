// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/communehq/commune/internal/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:      "test-jwt-secret-at-least-32-chars!!",
		SessionTimeout: time.Hour,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	mgr, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, err := mgr.GenerateToken("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "admin" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected unique jti in claims")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	mgr, _ := NewJWTManager(testSecurityConfig())
	other, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "another-secret-also-32-chars-long!!",
		SessionTimeout: time.Hour,
	})

	token, err := mgr.GenerateToken("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("expected validation failure with wrong secret")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	mgr, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "test-jwt-secret-at-least-32-chars!!",
		SessionTimeout: -time.Minute,
	})

	token, err := mgr.GenerateToken("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := mgr.ValidateToken(token); err == nil {
		t.Error("expected expired token to fail validation")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	tests := []struct {
		name       string
		configured string
		candidate  string
		want       bool
	}{
		{"bcrypt match", string(hash), "hunter2", true},
		{"bcrypt mismatch", string(hash), "wrong", false},
		{"plaintext match", "hunter2", "hunter2", true},
		{"plaintext mismatch", "hunter2", "wrong", false},
		{"empty configured", "", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.configured, tt.candidate); got != tt.want {
				t.Errorf("VerifyPassword(%q, %q) = %v, expected %v",
					tt.configured, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestRevocationInvalidatesSession(t *testing.T) {
	mgr, _ := NewJWTManager(testSecurityConfig())
	store := NewMemoryRevocationStore()
	svc := NewService(mgr, store)

	token, err := mgr.GenerateToken("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/automations", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims := svc.SessionFromRequest(req)
	if claims == nil {
		t.Fatal("expected valid session before revocation")
	}

	if err := store.Revoke(context.Background(), claims.ID, time.Hour); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if svc.SessionFromRequest(req) != nil {
		t.Error("expected session rejected after revocation")
	}
}

func TestSessionFromCookie(t *testing.T) {
	mgr, _ := NewJWTManager(testSecurityConfig())
	svc := NewService(mgr, NewMemoryRevocationStore())

	token, _ := mgr.GenerateToken("admin", "admin")

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	if svc.SessionFromRequest(req) == nil {
		t.Error("expected session from cookie")
	}
}

func TestMissingTokenReturnsNil(t *testing.T) {
	mgr, _ := NewJWTManager(testSecurityConfig())
	svc := NewService(mgr, NewMemoryRevocationStore())

	req := httptest.NewRequest("GET", "/", nil)
	if svc.SessionFromRequest(req) != nil {
		t.Error("expected nil session without token")
	}
}

func TestLoginLimiter(t *testing.T) {
	limiter := NewLoginLimiter(60, 2)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	if !limiter.Allow(req) || !limiter.Allow(req) {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if limiter.Allow(req) {
		t.Error("expected third rapid attempt to be limited")
	}

	// A different IP gets its own bucket.
	other := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	if !limiter.Allow(other) {
		t.Error("expected separate limit per IP")
	}
}
