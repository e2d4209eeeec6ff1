// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/communehq/commune/internal/logging"
)

// TryAcquireLock attempts to take the named lock without waiting. Returns
// true if acquired. A lock row older than ttl is considered abandoned and
// taken over.
func (db *DB) TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	cutoff := time.Now().UTC().Add(-ttl)
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM runner_locks WHERE name = ? AND acquired_at < ?`, name, cutoff); err != nil {
		return false, fmt.Errorf("failed to expire stale lock: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO runner_locks (name, holder, acquired_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO NOTHING`,
		name, holder, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		// Driver could not report affected rows; assume acquired since the
		// insert itself succeeded.
		logging.Warn().Err(err).Str("lock", name).Msg("RowsAffected unavailable after lock insert")
		return true, nil
	}
	return n > 0, nil
}

// ReleaseLock releases the named lock if held by holder.
func (db *DB) ReleaseLock(ctx context.Context, name, holder string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM runner_locks WHERE name = ? AND holder = ?`, name, holder)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
