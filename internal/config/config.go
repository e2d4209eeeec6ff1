// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package config loads and validates the Commune server configuration.
//
// Configuration is layered via Koanf v2 with precedence ENV > file > defaults.
package config

import "time"

// Config is the root configuration for the Commune server.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
	API         APIConfig         `koanf:"api"`
	Automations AutomationsConfig `koanf:"automations"`
	ActionLog   ActionLogConfig   `koanf:"action_log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// SecurityConfig holds authentication and rate-limiting settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Required; minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the JWT session lifetime.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername and AdminPassword are the built-in admin credentials.
	// AdminPassword may be a bcrypt hash ($2a$/$2b$ prefix) or plaintext.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// SessionStorePath is the BadgerDB directory for session revocation state.
	SessionStorePath string `koanf:"session_store_path"`

	// RateLimitReqs requests per RateLimitWindow for general API routes.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// LoginRatePerMinute and LoginBurst bound login attempts per client IP.
	LoginRatePerMinute float64 `koanf:"login_rate_per_minute"`
	LoginBurst         int     `koanf:"login_burst"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// APIConfig holds pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// AutomationsConfig holds automation runner settings.
type AutomationsConfig struct {
	// RunnerSecret authorizes external cron callers of the run endpoint via
	// the x-automations-secret header or the secret query parameter.
	// Empty disables the shared-secret path (session auth still works).
	RunnerSecret string `koanf:"runner_secret"`

	// CycleTimeout bounds a whole run cycle.
	CycleTimeout time.Duration `koanf:"cycle_timeout"`

	// LockTTL is the age after which a stale runner lock may be taken over.
	LockTTL time.Duration `koanf:"lock_ttl"`

	// FlagCacheTTL is how long feature-flag lookups are cached.
	FlagCacheTTL time.Duration `koanf:"flag_cache_ttl"`

	// DateFormat is the Go layout used for the {date} template placeholder.
	DateFormat string `koanf:"date_format"`

	// EnabledDefault is the fallback when the "automations" feature flag
	// has no stored value.
	EnabledDefault bool `koanf:"enabled_default"`
}

// ActionLogConfig holds action-log recorder and retention settings.
type ActionLogConfig struct {
	// BufferSize is the size of the async write buffer; writes beyond a
	// full buffer are dropped.
	BufferSize int `koanf:"buffer_size"`

	// RetentionDays is how long action logs are kept.
	RetentionDays int `koanf:"retention_days"`

	// CleanupInterval is how often the retention sweeper runs.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}
