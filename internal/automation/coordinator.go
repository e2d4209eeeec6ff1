// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/communehq/commune/internal/actionlog"
	"github.com/communehq/commune/internal/featureflag"
	"github.com/communehq/commune/internal/logging"
	"github.com/communehq/commune/internal/metrics"
	"github.com/communehq/commune/internal/models"
)

// LockName identifies the advisory lock serializing run cycles across
// replicas.
const LockName = "automations_run"

// Result is the aggregate outcome of one run cycle.
type Result struct {
	Ran      int  `json:"ran"`
	Skipped  int  `json:"skipped"`
	Disabled bool `json:"disabled,omitempty"`
	Locked   bool `json:"locked,omitempty"`
}

// Source enumerates the automations a cycle evaluates.
type Source interface {
	ListActiveScheduled(ctx context.Context) ([]*models.Automation, error)
}

// Locker is the advisory lock collaborator. TryAcquireLock must not wait.
type Locker interface {
	TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, holder string) error
}

// FlagChecker gates the whole engine on the automations feature flag.
type FlagChecker interface {
	IsEnabled(ctx context.Context, name string, fallback bool) bool
}

// Config holds coordinator settings.
type Config struct {
	// CycleTimeout bounds one whole run cycle.
	CycleTimeout time.Duration

	// LockTTL is the stale-lock takeover age.
	LockTTL time.Duration

	// EnabledDefault applies when the automations flag has no stored value.
	EnabledDefault bool
}

// DefaultConfig returns sensible coordinator defaults.
func DefaultConfig() Config {
	return Config{
		CycleTimeout:   5 * time.Minute,
		LockTTL:        10 * time.Minute,
		EnabledDefault: true,
	}
}

// Coordinator runs automation cycles. At most one cycle is mid-flight per
// deployment; losers of the lock race no-op instead of queueing.
type Coordinator struct {
	source   Source
	executor *Executor
	locker   Locker
	flags    FlagChecker
	logs     *actionlog.Recorder
	cfg      Config
	holder   string
	logger   zerolog.Logger

	now func() time.Time
}

// NewCoordinator creates a coordinator with a unique lock holder identity.
func NewCoordinator(source Source, executor *Executor, locker Locker, flags FlagChecker, logs *actionlog.Recorder, cfg Config) *Coordinator {
	return &Coordinator{
		source:   source,
		executor: executor,
		locker:   locker,
		flags:    flags,
		logs:     logs,
		cfg:      cfg,
		holder:   uuid.New().String(),
		logger:   logging.With().Str("component", "automation_coordinator").Logger(),
		now:      time.Now,
	}
}

// RunCycle evaluates every active scheduled automation once.
//
// The feature flag is checked once per cycle, before the lock. A held lock
// degrades the cycle to {locked:true}. A lock infrastructure error fails
// open: the cycle proceeds unserialized, favoring availability, and the
// event is surfaced through a counter.
func (c *Coordinator) RunCycle(ctx context.Context) (Result, error) {
	if !c.flags.IsEnabled(ctx, featureflag.Automations, c.cfg.EnabledDefault) {
		metrics.RunCyclesTotal.WithLabelValues("disabled").Inc()
		return Result{Disabled: true}, nil
	}

	if c.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CycleTimeout)
		defer cancel()
	}

	acquired, err := c.locker.TryAcquireLock(ctx, LockName, c.holder, c.cfg.LockTTL)
	if err != nil {
		c.logger.Error().Err(err).Msg("Lock acquisition failed, proceeding without lock")
		metrics.LockFailOpenTotal.Inc()
	} else if !acquired {
		metrics.RunCyclesTotal.WithLabelValues("locked").Inc()
		return Result{Locked: true}, nil
	}

	if acquired {
		defer func() {
			// Release must survive any failure in the cycle body. A fresh
			// context lets release succeed after cycle timeout.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.locker.ReleaseLock(releaseCtx, LockName, c.holder); err != nil {
				c.logger.Error().Err(err).Msg("Failed to release run lock")
			}
		}()
	}

	automations, err := c.source.ListActiveScheduled(ctx)
	if err != nil {
		metrics.RunCyclesTotal.WithLabelValues("failed").Inc()
		return Result{}, fmt.Errorf("failed to load automations: %w", err)
	}

	now := c.now()
	var result Result
	for _, a := range automations {
		if !IsDue(a, now) {
			result.Skipped++
			continue
		}

		outcome, execErr := c.executeOne(ctx, a, now)
		if execErr != nil {
			c.logger.Error().Err(execErr).Str("automation_id", a.ID).Msg("Automation execution failed")
			metrics.AutomationErrorsTotal.Inc()
			c.recordExecFailure(a, execErr)
			result.Skipped++
			continue
		}
		if outcome == OutcomeRan {
			result.Ran++
			metrics.AutomationsRanTotal.Inc()
		} else {
			result.Skipped++
		}
	}
	metrics.AutomationsSkippedTotal.Add(float64(result.Skipped))
	metrics.RunCyclesTotal.WithLabelValues("completed").Inc()

	c.logger.Info().
		Int("ran", result.Ran).
		Int("skipped", result.Skipped).
		Int("total", len(automations)).
		Msg("Run cycle completed")

	return result, nil
}

// executeOne isolates a single automation: panics and errors stay local so
// one broken automation cannot abort the rest of the cycle.
func (c *Coordinator) executeOne(ctx context.Context, a *models.Automation, now time.Time) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeSkipped
			err = fmt.Errorf("panic during execution: %v", r)
		}
	}()

	start := time.Now()
	outcome, err = c.executor.Execute(ctx, a, now)
	metrics.ExecutionDuration.Observe(time.Since(start).Seconds())
	return outcome, err
}

// recordExecFailure writes a best-effort failure entry. The recorder never
// propagates sink errors, so this cannot abort the cycle.
func (c *Coordinator) recordExecFailure(a *models.Automation, execErr error) {
	if c.logs == nil {
		return
	}
	c.logs.RecordFailure(a.ID, derefString(a.BotID), string(a.ActionType),
		string(a.TriggerType), resolveChannelID(a), execErr.Error())
}
