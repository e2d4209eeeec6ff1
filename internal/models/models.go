// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package models

import "time"

// User is a registered member of the platform.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Channel is a topic space that posts are published into.
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Bot is a non-human actor owned by a user. Automations may act through a
// bot; posts created this way are attributed to the bot's owner.
type Bot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	ChannelID *string   `json:"channel_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a content item in a channel. IsAutomated marks posts created by
// the automation engine; BotID links such posts to the originating bot.
type Post struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	IsAutomated bool      `json:"is_automated"`
	BotID       *string   `json:"bot_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
