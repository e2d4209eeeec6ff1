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

// Users

type userRequest struct {
	Username    string `json:"username" validate:"required,max=100"`
	DisplayName string `json:"display_name" validate:"max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	IsActive    bool   `json:"is_active"`
}

// CreateUser creates a platform user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	u := &models.User{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		IsActive:    req.IsActive,
	}
	if err := h.db.CreateUser(r.Context(), u); err != nil {
		respondError(w, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create user", err)
		return
	}
	respondData(w, http.StatusCreated, u)
}

// GetUser returns a user by ID.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.db.GetUser(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load user", err)
		return
	}
	respondData(w, http.StatusOK, u)
}

// ListUsers returns a page of users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	users, err := h.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list users", err)
		return
	}
	respondList(w, users, len(users), limit, offset)
}

// Channels

type channelRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Slug     string `json:"slug" validate:"required,max=100"`
	OwnerID  string `json:"owner_id" validate:"required"`
	IsActive bool   `json:"is_active"`
}

// CreateChannel creates a channel.
func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	c := &models.Channel{
		Name:     req.Name,
		Slug:     req.Slug,
		OwnerID:  req.OwnerID,
		IsActive: req.IsActive,
	}
	if err := h.db.CreateChannel(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create channel", err)
		return
	}
	respondData(w, http.StatusCreated, c)
}

// GetChannel returns a channel by ID.
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	c, err := h.db.GetChannel(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load channel", err)
		return
	}
	respondData(w, http.StatusOK, c)
}

// ListChannels returns a page of channels.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	channels, err := h.db.ListChannels(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list channels", err)
		return
	}
	respondList(w, channels, len(channels), limit, offset)
}

// Bots

type botRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	OwnerID   string  `json:"owner_id" validate:"required"`
	ChannelID *string `json:"channel_id"`
	IsActive  bool    `json:"is_active"`
}

// CreateBot creates a bot.
func (h *Handler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req botRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	b := &models.Bot{
		Name:      req.Name,
		OwnerID:   req.OwnerID,
		ChannelID: req.ChannelID,
		IsActive:  req.IsActive,
	}
	if err := h.db.CreateBot(r.Context(), b); err != nil {
		respondError(w, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create bot", err)
		return
	}
	respondData(w, http.StatusCreated, b)
}

// GetBot returns a bot by ID.
func (h *Handler) GetBot(w http.ResponseWriter, r *http.Request) {
	b, err := h.db.GetBot(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Bot not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load bot", err)
		return
	}
	respondData(w, http.StatusOK, b)
}

// ListBots returns a page of bots.
func (h *Handler) ListBots(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	bots, err := h.db.ListBots(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list bots", err)
		return
	}
	respondList(w, bots, len(bots), limit, offset)
}

// UpdateBot replaces a bot's mutable fields. Deactivating a bot silently
// pauses every automation acting through it.
func (h *Handler) UpdateBot(w http.ResponseWriter, r *http.Request) {
	var req botRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	b := &models.Bot{
		ID:        chi.URLParam(r, "id"),
		Name:      req.Name,
		OwnerID:   req.OwnerID,
		ChannelID: req.ChannelID,
		IsActive:  req.IsActive,
	}
	err := h.db.UpdateBot(r.Context(), b)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Bot not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update bot", err)
		return
	}
	respondData(w, http.StatusOK, b)
}

// Posts

// ListPosts returns a page of posts, optionally filtered by channel.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	posts, err := h.db.ListPosts(r.Context(), r.URL.Query().Get("channel_id"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list posts", err)
		return
	}
	respondList(w, posts, len(posts), limit, offset)
}

// GetPost returns a post by ID.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.db.GetPost(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Post not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load post", err)
		return
	}
	respondData(w, http.StatusOK, p)
}
