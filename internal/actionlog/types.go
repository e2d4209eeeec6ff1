// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package actionlog records the outcome of automation actions.
//
// Every executor dispatch produces an Entry, success or failure. Recording
// is fire-and-forget: entries go through an async buffer, store errors are
// logged and never propagated, and a full buffer drops the entry rather
// than blocking the runner.
package actionlog

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// Entry is one recorded automation action outcome.
type Entry struct {
	ID           string          `json:"id"`
	BotID        string          `json:"bot_id,omitempty"`
	AutomationID string          `json:"automation_id,omitempty"`
	ActionType   string          `json:"action_type"`
	TriggerType  string          `json:"trigger_type,omitempty"`
	ChannelID    string          `json:"channel_id,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Filter narrows action log queries.
type Filter struct {
	AutomationID string
	BotID        string
	ActionType   string
	SuccessOnly  bool
	FailuresOnly bool
	Since        time.Time
	Until        time.Time
	Limit        int
	Offset       int
}

// Store persists action log entries.
type Store interface {
	Save(ctx context.Context, e *Entry) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// Delete removes entries created before cutoff and returns the count.
	Delete(ctx context.Context, cutoff time.Time) (int64, error)
}
