// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package services

import (
	"context"
	"time"

	"github.com/communehq/commune/internal/logging"
)

// RetentionSweeper matches the action log recorder's cleanup surface.
type RetentionSweeper interface {
	Cleanup(ctx context.Context) (int64, error)
	CleanupInterval() time.Duration
}

// RetentionService periodically deletes action log entries older than the
// configured retention window.
type RetentionService struct {
	sweeper RetentionSweeper
	name    string
}

// NewRetentionService creates a retention sweeper service.
func NewRetentionService(sweeper RetentionSweeper) *RetentionService {
	return &RetentionService{
		sweeper: sweeper,
		name:    "actionlog-retention",
	}
}

// Serve implements suture.Service. One sweep runs per interval; a failed
// sweep is logged and retried at the next tick rather than restarting the
// service.
func (s *RetentionService) Serve(ctx context.Context) error {
	logger := logging.With().Str("component", "retention_service").Logger()

	interval := s.sweeper.CleanupInterval()
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			deleted, err := s.sweeper.Cleanup(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Action log cleanup failed")
				continue
			}
			if deleted > 0 {
				logger.Info().Int64("deleted", deleted).Msg("Action log entries pruned")
			}
		}
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *RetentionService) String() string {
	return s.name
}
