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
)

// GetFlag returns the stored value of a feature flag. ErrNotFound means no
// value has been set; callers apply their own default.
func (db *DB) GetFlag(ctx context.Context, name string) (bool, error) {
	var enabled bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT enabled FROM feature_flags WHERE name = ?`, name).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to query feature flag: %w", err)
	}
	return enabled, nil
}

// SetFlag upserts a feature flag value.
func (db *DB) SetFlag(ctx context.Context, name string, enabled bool) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO feature_flags (name, enabled, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
		name, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert feature flag: %w", err)
	}
	return nil
}

// ListFlags returns all stored feature flags as a name to value map.
func (db *DB) ListFlags(ctx context.Context) (map[string]bool, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT name, enabled FROM feature_flags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature flags: %w", err)
	}
	defer closeQuietly(rows)

	flags := make(map[string]bool)
	for rows.Next() {
		var (
			name    string
			enabled bool
		)
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan feature flag: %w", err)
		}
		flags[name] = enabled
	}
	return flags, rows.Err()
}
