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

	"github.com/google/uuid"

	"github.com/communehq/commune/internal/models"
)

// CreateChannel inserts a new channel.
func (db *DB) CreateChannel(ctx context.Context, c *models.Channel) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO channels (id, name, slug, owner_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.OwnerID, c.IsActive, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert channel: %w", err)
	}
	return nil
}

// GetChannel returns a channel by ID.
func (db *DB) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, slug, owner_id, is_active, created_at
		FROM channels WHERE id = ?`, id)
	return scanChannel(row)
}

// ListChannels returns channels ordered by creation time, newest first.
func (db *DB) ListChannels(ctx context.Context, limit, offset int) ([]*models.Channel, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, slug, owner_id, is_active, created_at
		FROM channels ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer closeQuietly(rows)

	var result []*models.Channel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteChannel removes a channel by ID.
func (db *DB) DeleteChannel(ctx context.Context, id string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return checkAffected(res)
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	var c models.Channel
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.OwnerID, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan channel: %w", err)
	}
	return &c, nil
}
