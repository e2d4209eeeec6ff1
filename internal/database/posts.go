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

// CreatePost inserts a new post.
func (db *DB) CreatePost(ctx context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO posts (id, channel_id, user_id, content, is_automated, bot_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ChannelID, p.UserID, p.Content, p.IsAutomated, p.BotID, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetPost returns a post by ID.
func (db *DB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, channel_id, user_id, content, is_automated, bot_id, created_at
		FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// ListPosts returns posts, optionally filtered by channel, newest first.
func (db *DB) ListPosts(ctx context.Context, channelID string, limit, offset int) ([]*models.Post, error) {
	query := `
		SELECT id, channel_id, user_id, content, is_automated, bot_id, created_at
		FROM posts`
	args := []interface{}{}
	if channelID != "" {
		query += ` WHERE channel_id = ?`
		args = append(args, channelID)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer closeQuietly(rows)

	var result []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// DeletePost removes a post by ID.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return checkAffected(res)
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p     models.Post
		botID sql.NullString
	)
	err := row.Scan(&p.ID, &p.ChannelID, &p.UserID, &p.Content, &p.IsAutomated, &botID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	if botID.Valid {
		p.BotID = &botID.String
	}
	return &p, nil
}
