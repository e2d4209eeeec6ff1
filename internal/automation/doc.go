// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package automation implements the scheduled automation engine.
//
// The engine has three parts. The schedule evaluator (IsDue) is a pure
// predicate deciding whether an automation fires at a given instant. The
// coordinator (RunCycle) serializes whole cycles behind a named advisory
// lock, enumerates active scheduled automations and isolates per-automation
// failures. The executor dispatches a due automation: it resolves the
// target channel and acting identity, renders the content template and
// persists the post, then advances the trigger cursor.
//
// The engine owns no scheduler thread. Cycles are driven externally,
// typically by a cron hitting the run endpoint every minute.
package automation
