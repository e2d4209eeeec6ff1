// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package actionlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DuckDBStore persists action log entries in the shared DuckDB database.
// The action_logs table is created by the database package schema.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a store over an existing connection.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// Save persists a single entry.
func (s *DuckDBStore) Save(ctx context.Context, e *Entry) error {
	details := string(e.Details)
	if details == "" {
		details = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_logs
			(id, bot_id, automation_id, action_type, trigger_type, channel_id,
			 details, success, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullIfEmpty(e.BotID), nullIfEmpty(e.AutomationID), e.ActionType,
		e.TriggerType, nullIfEmpty(e.ChannelID), details, e.Success,
		e.ErrorMessage, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert action log: %w", err)
	}
	return nil
}

// Query retrieves entries matching the filter, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	where, args := buildFilter(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	query := `
		SELECT id, bot_id, automation_id, action_type, trigger_type, channel_id,
		       details, success, error_message, created_at
		FROM action_logs` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query action logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Entry
	for rows.Next() {
		var (
			e            Entry
			botID        sql.NullString
			automationID sql.NullString
			channelID    sql.NullString
			details      string
		)
		err := rows.Scan(&e.ID, &botID, &automationID, &e.ActionType, &e.TriggerType,
			&channelID, &details, &e.Success, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action log: %w", err)
		}
		e.BotID = botID.String
		e.AutomationID = automationID.String
		e.ChannelID = channelID.String
		e.Details = []byte(details)
		result = append(result, e)
	}
	return result, rows.Err()
}

// Count returns the number of entries matching the filter.
func (s *DuckDBStore) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args := buildFilter(filter)

	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_logs`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count action logs: %w", err)
	}
	return count, nil
}

// Delete removes entries created before cutoff.
func (s *DuckDBStore) Delete(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM action_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete action logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func buildFilter(filter Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	if filter.AutomationID != "" {
		conds = append(conds, "automation_id = ?")
		args = append(args, filter.AutomationID)
	}
	if filter.BotID != "" {
		conds = append(conds, "bot_id = ?")
		args = append(args, filter.BotID)
	}
	if filter.ActionType != "" {
		conds = append(conds, "action_type = ?")
		args = append(args, filter.ActionType)
	}
	if filter.SuccessOnly {
		conds = append(conds, "success = true")
	}
	if filter.FailuresOnly {
		conds = append(conds, "success = false")
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.Until)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
