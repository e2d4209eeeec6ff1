// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// defaultConfig returns the built-in defaults. These form the lowest
// precedence layer; file and environment values override them.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "production",
		},
		Database: DatabaseConfig{
			Path:                   "data/commune.db",
			MaxMemory:              "1GB",
			Threads:                4,
			PreserveInsertionOrder: false,
		},
		Security: SecurityConfig{
			SessionTimeout:     24 * time.Hour,
			AdminUsername:      "admin",
			SessionStorePath:   "data/sessions",
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			LoginRatePerMinute: 10,
			LoginBurst:         5,
			CORSOrigins:        []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
		},
		Automations: AutomationsConfig{
			CycleTimeout:   5 * time.Minute,
			LockTTL:        10 * time.Minute,
			FlagCacheTTL:   30 * time.Second,
			DateFormat:     "02.01.2006",
			EnabledDefault: true,
		},
		ActionLog: ActionLogConfig{
			BufferSize:      1000,
			RetentionDays:   90,
			CleanupInterval: time.Hour,
		},
	}
}

// LoadWithKoanf loads configuration with layered precedence:
// defaults, then an optional YAML file, then environment variables.
// If configFile is empty, well-known locations are probed.
func LoadWithKoanf(configFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// findConfigFile probes well-known config locations. Returns empty string
// if none exists.
func findConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"/etc/commune/config.yaml",
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// envMappings maps environment variable names to config keys. Only the
// variables listed here are read; everything else in the environment is
// ignored.
var envMappings = map[string]string{
	"HTTP_PORT":             "server.port",
	"HTTP_HOST":             "server.host",
	"HTTP_TIMEOUT":          "server.timeout",
	"ENVIRONMENT":           "server.environment",
	"DUCKDB_PATH":           "database.path",
	"DUCKDB_MAX_MEMORY":     "database.max_memory",
	"DUCKDB_THREADS":        "database.threads",
	"JWT_SECRET":            "security.jwt_secret",
	"SESSION_TIMEOUT":       "security.session_timeout",
	"ADMIN_USERNAME":        "security.admin_username",
	"ADMIN_PASSWORD":        "security.admin_password",
	"SESSION_STORE_PATH":    "security.session_store_path",
	"RATE_LIMIT_REQS":       "security.rate_limit_reqs",
	"RATE_LIMIT_WINDOW":     "security.rate_limit_window",
	"CORS_ORIGINS":          "security.cors_origins",
	"LOG_LEVEL":             "logging.level",
	"LOG_FORMAT":            "logging.format",
	"LOG_CALLER":            "logging.caller",
	"API_DEFAULT_PAGE_SIZE": "api.default_page_size",
	"API_MAX_PAGE_SIZE":     "api.max_page_size",
	"AUTOMATIONS_SECRET":    "automations.runner_secret",
	"AUTOMATIONS_ENABLED":   "automations.enabled_default",
	"AUTOMATION_TIMEOUT":    "automations.cycle_timeout",
	"AUTOMATION_LOCK_TTL":   "automations.lock_ttl",
	"AUTOMATION_DATE_FMT":   "automations.date_format",
	"ACTION_LOG_BUFFER":     "action_log.buffer_size",
	"ACTION_LOG_RETENTION":  "action_log.retention_days",
}

// envTransform maps an environment variable name to its koanf key.
// Unmapped variables return "" and are skipped.
func envTransform(s string) string {
	if key, ok := envMappings[s]; ok {
		return key
	}
	return ""
}
