// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package api

import (
	"net/http"
	"time"

	"github.com/communehq/commune/internal/auth"
	"github.com/communehq/commune/internal/logging"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login authenticates against the configured admin credentials and issues
// a session token, also set as an HTTP-only cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter.Allow(r) {
		respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts", nil)
		return
	}

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if req.Username != h.cfg.Security.AdminUsername ||
		!auth.VerifyPassword(h.cfg.Security.AdminPassword, req.Password) {
		logging.Warn().Str("username", sanitizeLogValue(req.Username)).Msg("Login failed")
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	token, err := h.authSvc.JWT().GenerateToken(req.Username, "admin")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to create session", err)
		return
	}

	expires := time.Now().Add(h.authSvc.JWT().SessionTimeout())
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respondData(w, http.StatusOK, loginResponse{
		Token:     token,
		Username:  req.Username,
		Role:      "admin",
		ExpiresAt: expires,
	})
}

// Logout revokes the current session token and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := h.authSvc.SessionFromRequest(r)
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "No active session", nil)
		return
	}

	if claims.ID != "" {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := h.authSvc.Revocation().Revoke(r.Context(), claims.ID, ttl); err != nil {
				respondError(w, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to revoke session", err)
				return
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	respondData(w, http.StatusOK, map[string]bool{"logged_out": true})
}
