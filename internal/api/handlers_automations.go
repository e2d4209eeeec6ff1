// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/communehq/commune/internal/database"
	"github.com/communehq/commune/internal/models"
)

type automationRequest struct {
	Name          string                `json:"name" validate:"required,max=200"`
	BotID         *string               `json:"bot_id"`
	ChannelID     *string               `json:"channel_id"`
	IsActive      bool                  `json:"is_active"`
	TriggerConfig models.ScheduleConfig `json:"trigger_config"`
	ActionType    string                `json:"action_type" validate:"required,max=100"`
	ActionConfig  models.ActionConfig   `json:"action_config"`
}

// CreateAutomation creates a scheduled automation.
func (h *Handler) CreateAutomation(w http.ResponseWriter, r *http.Request) {
	var req automationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	a := &models.Automation{
		Name:          req.Name,
		BotID:         req.BotID,
		ChannelID:     req.ChannelID,
		IsActive:      req.IsActive,
		TriggerType:   models.TriggerScheduled,
		TriggerConfig: req.TriggerConfig,
		ActionType:    models.ActionType(req.ActionType),
		ActionConfig:  req.ActionConfig,
	}
	if err := h.db.CreateAutomation(r.Context(), a); err != nil {
		respondError(w, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create automation", err)
		return
	}

	respondData(w, http.StatusCreated, a)
}

// GetAutomation returns a single automation.
func (h *Handler) GetAutomation(w http.ResponseWriter, r *http.Request) {
	a, err := h.db.GetAutomation(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Automation not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load automation", err)
		return
	}
	respondData(w, http.StatusOK, a)
}

// ListAutomations returns a page of automations.
func (h *Handler) ListAutomations(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)

	automations, err := h.db.ListAutomations(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list automations", err)
		return
	}
	respondList(w, automations, len(automations), limit, offset)
}

// UpdateAutomation replaces an automation's mutable fields. The trigger
// cursor is owned by the executor and cannot be set through the API.
func (h *Handler) UpdateAutomation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req automationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	a := &models.Automation{
		ID:            id,
		Name:          req.Name,
		BotID:         req.BotID,
		ChannelID:     req.ChannelID,
		IsActive:      req.IsActive,
		TriggerType:   models.TriggerScheduled,
		TriggerConfig: req.TriggerConfig,
		ActionType:    models.ActionType(req.ActionType),
		ActionConfig:  req.ActionConfig,
	}
	err := h.db.UpdateAutomation(r.Context(), a)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Automation not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update automation", err)
		return
	}
	respondData(w, http.StatusOK, a)
}

// DeleteAutomation removes an automation.
func (h *Handler) DeleteAutomation(w http.ResponseWriter, r *http.Request) {
	err := h.db.DeleteAutomation(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Automation not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete automation", err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}
