// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package database

import (
	"context"
	"fmt"
	"strings"
)

// schemaSQL defines all tables and indexes. Statements are separated by
// semicolons and executed one at a time. JSON configuration columns are
// stored as text and marshaled by the store layer.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR PRIMARY KEY,
	username VARCHAR NOT NULL UNIQUE,
	display_name VARCHAR NOT NULL DEFAULT '',
	email VARCHAR NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS channels (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	slug VARCHAR NOT NULL UNIQUE,
	owner_id VARCHAR NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bots (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	owner_id VARCHAR NOT NULL,
	channel_id VARCHAR,
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS posts (
	id VARCHAR PRIMARY KEY,
	channel_id VARCHAR NOT NULL,
	user_id VARCHAR NOT NULL,
	content VARCHAR NOT NULL,
	is_automated BOOLEAN NOT NULL DEFAULT false,
	bot_id VARCHAR,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS automations (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL DEFAULT '',
	bot_id VARCHAR,
	channel_id VARCHAR,
	is_active BOOLEAN NOT NULL DEFAULT true,
	trigger_type VARCHAR NOT NULL DEFAULT 'scheduled',
	trigger_config VARCHAR NOT NULL DEFAULT '{}',
	action_type VARCHAR NOT NULL DEFAULT '',
	action_config VARCHAR NOT NULL DEFAULT '{}',
	trigger_count BIGINT NOT NULL DEFAULT 0,
	last_triggered_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS action_logs (
	id VARCHAR PRIMARY KEY,
	bot_id VARCHAR,
	automation_id VARCHAR,
	action_type VARCHAR NOT NULL,
	trigger_type VARCHAR NOT NULL DEFAULT '',
	channel_id VARCHAR,
	details VARCHAR NOT NULL DEFAULT '{}',
	success BOOLEAN NOT NULL DEFAULT true,
	error_message VARCHAR NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feature_flags (
	name VARCHAR PRIMARY KEY,
	enabled BOOLEAN NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runner_locks (
	name VARCHAR PRIMARY KEY,
	holder VARCHAR NOT NULL,
	acquired_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_posts_channel ON posts(channel_id, created_at);
CREATE INDEX IF NOT EXISTS idx_automations_active ON automations(is_active, trigger_type);
CREATE INDEX IF NOT EXISTS idx_action_logs_created ON action_logs(created_at);
CREATE INDEX IF NOT EXISTS idx_action_logs_automation ON action_logs(automation_id, created_at);
`

// EnsureSchema creates all tables and indexes if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
