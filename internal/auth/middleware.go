// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/communehq/commune/internal/logging"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "commune_session"

type claimsContextKey struct{}

// Service bundles token validation and revocation checks.
type Service struct {
	jwt        *JWTManager
	revocation RevocationStore
}

// NewService creates the session service.
func NewService(jwt *JWTManager, revocation RevocationStore) *Service {
	return &Service{jwt: jwt, revocation: revocation}
}

// JWT exposes the token manager for login handlers.
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// Revocation exposes the revocation store for logout handlers.
func (s *Service) Revocation() RevocationStore {
	return s.revocation
}

// SessionFromRequest validates the session token on a request, if any.
// Returns nil when no token is present or the token is invalid or revoked.
func (s *Service) SessionFromRequest(r *http.Request) *Claims {
	token := extractToken(r)
	if token == "" {
		return nil
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}

	if claims.ID != "" && s.revocation != nil {
		revoked, err := s.revocation.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			logging.Warn().Err(err).Msg("Revocation check failed, rejecting session")
			return nil
		}
		if revoked {
			return nil
		}
	}

	return claims
}

// RequireSession is middleware that rejects requests without a valid
// session and stores the claims in the request context.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := s.SessionFromRequest(r)
		if claims == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","error":{"code":"UNAUTHORIZED","message":"Authentication required"}}`))
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the session claims stored by RequireSession.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return claims
}

// extractToken pulls the session token from the Authorization header or
// the session cookie.
func extractToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
