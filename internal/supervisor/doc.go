// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package supervisor builds the suture supervision tree that runs the
// long-lived parts of Commune: the HTTP server and background maintenance
// tasks. Services crashing are restarted with backoff instead of taking
// the process down.
package supervisor
