// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package api provides the HTTP surface of Commune using the chi router.
package api

import (
	"github.com/communehq/commune/internal/actionlog"
	"github.com/communehq/commune/internal/auth"
	"github.com/communehq/commune/internal/automation"
	"github.com/communehq/commune/internal/config"
	"github.com/communehq/commune/internal/database"
	"github.com/communehq/commune/internal/featureflag"
)

// Handler carries the dependencies of all API handlers.
type Handler struct {
	cfg          *config.Config
	db           *database.DB
	coordinator  *automation.Coordinator
	flags        *featureflag.Service
	authSvc      *auth.Service
	loginLimiter *auth.LoginLimiter
	logs         *actionlog.Recorder
}

// NewHandler creates the API handler set.
func NewHandler(
	cfg *config.Config,
	db *database.DB,
	coordinator *automation.Coordinator,
	flags *featureflag.Service,
	authSvc *auth.Service,
	loginLimiter *auth.LoginLimiter,
	logs *actionlog.Recorder,
) *Handler {
	return &Handler{
		cfg:          cfg,
		db:           db,
		coordinator:  coordinator,
		flags:        flags,
		authSvc:      authSvc,
		loginLimiter: loginLimiter,
		logs:         logs,
	}
}
