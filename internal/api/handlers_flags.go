// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type flagRequest struct {
	Enabled bool `json:"enabled"`
}

// ListFlags returns all persisted feature flags.
func (h *Handler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.flags.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list feature flags", err)
		return
	}
	respondData(w, http.StatusOK, flags)
}

// SetFlag sets a feature flag value.
func (h *Handler) SetFlag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req flagRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}

	if err := h.flags.Set(r.Context(), name, req.Enabled); err != nil {
		respondError(w, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to set feature flag", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"name": name, "enabled": req.Enabled})
}
