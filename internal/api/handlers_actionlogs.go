// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package api

import (
	"net/http"

	"github.com/communehq/commune/internal/actionlog"
)

// ListActionLogs returns a page of action log entries, newest first.
// Filters: automation_id, bot_id, action_type, status=success|failure.
func (h *Handler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)

	filter := actionlog.Filter{
		AutomationID: r.URL.Query().Get("automation_id"),
		BotID:        r.URL.Query().Get("bot_id"),
		ActionType:   r.URL.Query().Get("action_type"),
		Limit:        limit,
		Offset:       offset,
	}
	switch r.URL.Query().Get("status") {
	case "success":
		filter.SuccessOnly = true
	case "failure":
		filter.FailuresOnly = true
	}

	entries, err := h.logs.Query(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to query action logs", err)
		return
	}
	respondList(w, entries, len(entries), limit, offset)
}
