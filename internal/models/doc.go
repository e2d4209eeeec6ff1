// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package models defines the shared data structures of the Commune platform:
// users, channels, bots, posts, automations, and the API response envelope.
package models
