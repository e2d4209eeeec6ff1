// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Command server runs the Commune API server and automation engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/communehq/commune/internal/actionlog"
	"github.com/communehq/commune/internal/api"
	"github.com/communehq/commune/internal/auth"
	"github.com/communehq/commune/internal/automation"
	"github.com/communehq/commune/internal/config"
	"github.com/communehq/commune/internal/database"
	"github.com/communehq/commune/internal/featureflag"
	"github.com/communehq/commune/internal/logging"
	"github.com/communehq/commune/internal/supervisor"
	"github.com/communehq/commune/internal/supervisor/services"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.LoadWithKoanf(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Bool("runner_secret_set", cfg.Automations.RunnerSecret != "").
		Msg("Starting Commune")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Action log: async recorder over a DuckDB-backed store.
	recorder := actionlog.NewRecorder(actionlog.NewDuckDBStore(db.Conn()), &actionlog.Config{
		BufferSize:      cfg.ActionLog.BufferSize,
		RetentionDays:   cfg.ActionLog.RetentionDays,
		CleanupInterval: cfg.ActionLog.CleanupInterval,
	})
	defer func() {
		if err := recorder.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing action log recorder")
		}
	}()

	flags := featureflag.New(db, cfg.Automations.FlagCacheTTL)

	executor := automation.NewExecutor(db, recorder, cfg.Automations.DateFormat)
	coordinator := automation.NewCoordinator(db, executor, db, flags, recorder, automation.Config{
		CycleTimeout:   cfg.Automations.CycleTimeout,
		LockTTL:        cfg.Automations.LockTTL,
		EnabledDefault: cfg.Automations.EnabledDefault,
	})

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create JWT manager")
	}

	revocation, err := auth.NewBadgerRevocationStore(cfg.Security.SessionStorePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session revocation store")
	}
	defer func() {
		if err := revocation.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session revocation store")
		}
	}()

	authSvc := auth.NewService(jwtManager, revocation)
	loginLimiter := auth.NewLoginLimiter(cfg.Security.LoginRatePerMinute, cfg.Security.LoginBurst)

	handler := api.NewHandler(cfg, db, coordinator, flags, authSvc, loginLimiter, recorder)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.NewRouter(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddMaintenanceService(services.NewRetentionService(recorder))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Commune stopped gracefully")
}
