// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/communehq/commune/internal/featureflag"
	"github.com/communehq/commune/internal/logging"
)

// RunnerSecretHeader authorizes external cron callers.
const RunnerSecretHeader = "x-automations-secret"

// RunAutomations triggers one automation run cycle.
//
// The feature flag is checked before authorization: a disabled engine
// answers {disabled:true} with HTTP 200 to any caller. Authorized callers
// hold either the shared runner secret (header or query parameter) or a
// valid session. Individual automation failures never surface as non-200;
// they are visible only through the action log.
func (h *Handler) RunAutomations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.flags.IsEnabled(ctx, featureflag.Automations, h.cfg.Automations.EnabledDefault) {
		writeRunResult(w, runResponse{Disabled: true})
		return
	}

	if !h.authorizeRunner(r) {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Runner secret or session required", nil)
		return
	}

	result, err := h.coordinator.RunCycle(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RUN_CYCLE_FAILED", "Automation run cycle failed", err)
		return
	}

	writeRunResult(w, runResponse{
		Ran:      result.Ran,
		Skipped:  result.Skipped,
		Disabled: result.Disabled,
		Locked:   result.Locked,
	})
}

// authorizeRunner accepts the pre-shared runner secret or an authenticated
// session. An empty configured secret disables the secret path entirely.
func (h *Handler) authorizeRunner(r *http.Request) bool {
	secret := h.cfg.Automations.RunnerSecret
	if secret != "" {
		if r.Header.Get(RunnerSecretHeader) == secret {
			return true
		}
		if r.URL.Query().Get("secret") == secret {
			return true
		}
	}
	return h.authSvc.SessionFromRequest(r) != nil
}

// runResponse is the trigger endpoint's wire format. It is deliberately
// not wrapped in the standard envelope so external cron integrations see
// the counts at the top level.
type runResponse struct {
	Ran      int  `json:"ran"`
	Skipped  int  `json:"skipped"`
	Disabled bool `json:"disabled,omitempty"`
	Locked   bool `json:"locked,omitempty"`
}

func writeRunResult(w http.ResponseWriter, resp runResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to write run response")
	}
}
