// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package config

import (
	"errors"
	"fmt"
)

const minJWTSecretLength = 32

// Validate checks that the configuration is internally consistent and safe
// to run with.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateAutomations(); err != nil {
		return err
	}
	return c.validateActionLog()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return errors.New("server.timeout must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Database.Threads < 1 {
		return fmt.Errorf("database.threads must be at least 1, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret is required (set JWT_SECRET)")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("security.jwt_secret must be at least %d characters, got %d",
			minJWTSecretLength, len(c.Security.JWTSecret))
	}
	if c.Security.AdminUsername == "" {
		return errors.New("security.admin_username is required")
	}
	if c.Security.SessionTimeout <= 0 {
		return errors.New("security.session_timeout must be positive")
	}
	if c.Security.RateLimitReqs < 1 {
		return errors.New("security.rate_limit_reqs must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return errors.New("security.rate_limit_window must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return errors.New("api.default_page_size must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateAutomations() error {
	if c.Automations.CycleTimeout <= 0 {
		return errors.New("automations.cycle_timeout must be positive")
	}
	if c.Automations.LockTTL <= 0 {
		return errors.New("automations.lock_ttl must be positive")
	}
	if c.Automations.DateFormat == "" {
		return errors.New("automations.date_format is required")
	}
	return nil
}

func (c *Config) validateActionLog() error {
	if c.ActionLog.BufferSize < 1 {
		return errors.New("action_log.buffer_size must be at least 1")
	}
	if c.ActionLog.RetentionDays < 1 {
		return errors.New("action_log.retention_days must be at least 1")
	}
	if c.ActionLog.CleanupInterval <= 0 {
		return errors.New("action_log.cleanup_interval must be positive")
	}
	return nil
}
