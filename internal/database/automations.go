// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/communehq/commune/internal/models"
)

// CreateAutomation inserts a new automation. Missing ID and timestamps are
// filled in.
func (db *DB) CreateAutomation(ctx context.Context, a *models.Automation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.TriggerType == "" {
		a.TriggerType = models.TriggerScheduled
	}

	triggerCfg, err := json.Marshal(a.TriggerConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}
	actionCfg, err := json.Marshal(a.ActionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO automations
			(id, name, bot_id, channel_id, is_active, trigger_type, trigger_config,
			 action_type, action_config, trigger_count, last_triggered_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.BotID, a.ChannelID, a.IsActive, string(a.TriggerType),
		string(triggerCfg), string(a.ActionType), string(actionCfg),
		a.TriggerCount, a.LastTriggeredAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert automation: %w", err)
	}
	return nil
}

// GetAutomation returns a single automation by ID.
func (db *DB) GetAutomation(ctx context.Context, id string) (*models.Automation, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, bot_id, channel_id, is_active, trigger_type, trigger_config,
		       action_type, action_config, trigger_count, last_triggered_at, created_at, updated_at
		FROM automations WHERE id = ?`, id)

	a, err := scanAutomation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// ListAutomations returns automations ordered by creation time, newest first.
func (db *DB) ListAutomations(ctx context.Context, limit, offset int) ([]*models.Automation, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, bot_id, channel_id, is_active, trigger_type, trigger_config,
		       action_type, action_config, trigger_count, last_triggered_at, created_at, updated_at
		FROM automations ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}
	defer closeQuietly(rows)

	return scanAutomations(rows)
}

// ListActiveScheduled returns all active automations with the scheduled
// trigger type, the working set of a runner cycle.
func (db *DB) ListActiveScheduled(ctx context.Context) ([]*models.Automation, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, bot_id, channel_id, is_active, trigger_type, trigger_config,
		       action_type, action_config, trigger_count, last_triggered_at, created_at, updated_at
		FROM automations
		WHERE is_active = true AND trigger_type = ?
		ORDER BY created_at`, string(models.TriggerScheduled))
	if err != nil {
		return nil, fmt.Errorf("failed to query active automations: %w", err)
	}
	defer closeQuietly(rows)

	return scanAutomations(rows)
}

// UpdateAutomation replaces the mutable fields of an automation. The trigger
// cursor (trigger_count, last_triggered_at) is not touched here; only
// AdvanceTriggerCursor moves it.
func (db *DB) UpdateAutomation(ctx context.Context, a *models.Automation) error {
	triggerCfg, err := json.Marshal(a.TriggerConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}
	actionCfg, err := json.Marshal(a.ActionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}
	a.UpdatedAt = time.Now().UTC()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE automations SET
			name = ?, bot_id = ?, channel_id = ?, is_active = ?,
			trigger_type = ?, trigger_config = ?, action_type = ?, action_config = ?,
			updated_at = ?
		WHERE id = ?`,
		a.Name, a.BotID, a.ChannelID, a.IsActive,
		string(a.TriggerType), string(triggerCfg), string(a.ActionType), string(actionCfg),
		a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update automation: %w", err)
	}
	return checkAffected(res)
}

// DeleteAutomation removes an automation by ID.
func (db *DB) DeleteAutomation(ctx context.Context, id string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM automations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete automation: %w", err)
	}
	return checkAffected(res)
}

// AdvanceTriggerCursor increments the trigger count and records firedAt as
// the last trigger time. Called once per fired automation per cycle.
func (db *DB) AdvanceTriggerCursor(ctx context.Context, id string, firedAt time.Time) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE automations
		SET trigger_count = trigger_count + 1, last_triggered_at = ?, updated_at = ?
		WHERE id = ?`,
		firedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to advance trigger cursor: %w", err)
	}
	return checkAffected(res)
}

// CountAutomations returns the total number of automations.
func (db *DB) CountAutomations(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM automations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count automations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAutomation(row rowScanner) (*models.Automation, error) {
	var (
		a           models.Automation
		triggerType string
		actionType  string
		triggerCfg  string
		actionCfg   string
		botID       sql.NullString
		channelID   sql.NullString
		lastFired   sql.NullTime
	)

	err := row.Scan(&a.ID, &a.Name, &botID, &channelID, &a.IsActive,
		&triggerType, &triggerCfg, &actionType, &actionCfg,
		&a.TriggerCount, &lastFired, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.TriggerType = models.TriggerType(triggerType)
	a.ActionType = models.ActionType(actionType)
	if botID.Valid {
		a.BotID = &botID.String
	}
	if channelID.Valid {
		a.ChannelID = &channelID.String
	}
	if lastFired.Valid {
		t := lastFired.Time
		a.LastTriggeredAt = &t
	}

	// Malformed stored configs degrade to the zero config rather than
	// failing the whole listing.
	if err := json.Unmarshal([]byte(triggerCfg), &a.TriggerConfig); err != nil {
		a.TriggerConfig = models.ScheduleConfig{}
	}
	if err := json.Unmarshal([]byte(actionCfg), &a.ActionConfig); err != nil {
		a.ActionConfig = models.ActionConfig{}
	}

	return &a, nil
}

func scanAutomations(rows *sql.Rows) ([]*models.Automation, error) {
	var result []*models.Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
