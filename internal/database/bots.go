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

// CreateBot inserts a new bot.
func (db *DB) CreateBot(ctx context.Context, b *models.Bot) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO bots (id, name, owner_id, channel_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.OwnerID, b.ChannelID, b.IsActive, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bot: %w", err)
	}
	return nil
}

// GetBot returns a bot by ID.
func (db *DB) GetBot(ctx context.Context, id string) (*models.Bot, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, owner_id, channel_id, is_active, created_at
		FROM bots WHERE id = ?`, id)
	return scanBot(row)
}

// ListBots returns bots ordered by creation time, newest first.
func (db *DB) ListBots(ctx context.Context, limit, offset int) ([]*models.Bot, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, owner_id, channel_id, is_active, created_at
		FROM bots ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query bots: %w", err)
	}
	defer closeQuietly(rows)

	var result []*models.Bot
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// UpdateBot replaces the mutable fields of a bot.
func (db *DB) UpdateBot(ctx context.Context, b *models.Bot) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE bots SET name = ?, owner_id = ?, channel_id = ?, is_active = ?
		WHERE id = ?`,
		b.Name, b.OwnerID, b.ChannelID, b.IsActive, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update bot: %w", err)
	}
	return checkAffected(res)
}

// DeleteBot removes a bot by ID.
func (db *DB) DeleteBot(ctx context.Context, id string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM bots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bot: %w", err)
	}
	return checkAffected(res)
}

func scanBot(row rowScanner) (*models.Bot, error) {
	var (
		b         models.Bot
		channelID sql.NullString
	)
	err := row.Scan(&b.ID, &b.Name, &b.OwnerID, &channelID, &b.IsActive, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bot: %w", err)
	}
	if channelID.Valid {
		b.ChannelID = &channelID.String
	}
	return &b, nil
}
