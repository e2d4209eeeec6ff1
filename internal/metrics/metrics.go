// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package metrics defines the Prometheus instrumentation for Commune.
// All collectors are registered with the default registry via promauto and
// exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commune_http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commune_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// HTTPActiveRequests gauges in-flight requests.
	HTTPActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "commune_http_active_requests",
		Help: "Number of in-flight HTTP requests",
	})

	// RunCyclesTotal counts automation run cycles by outcome:
	// completed, locked, disabled or failed.
	RunCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commune_automation_run_cycles_total",
		Help: "Automation run cycles by outcome",
	}, []string{"outcome"})

	// AutomationsRanTotal counts automations that fired.
	AutomationsRanTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commune_automations_ran_total",
		Help: "Automations that fired and were dispatched",
	})

	// AutomationsSkippedTotal counts automations evaluated but not fired.
	AutomationsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commune_automations_skipped_total",
		Help: "Automations evaluated as not due or skipped",
	})

	// AutomationErrorsTotal counts per-automation execution errors.
	AutomationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commune_automation_errors_total",
		Help: "Automation executions that failed",
	})

	// LockFailOpenTotal counts run cycles that proceeded without the lock
	// because the lock infrastructure itself errored.
	LockFailOpenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commune_automation_lock_failopen_total",
		Help: "Run cycles that proceeded despite a lock infrastructure error",
	})

	// ExecutionDuration observes per-automation execution latency.
	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "commune_automation_execution_duration_seconds",
		Help:    "Per-automation execution duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
)
