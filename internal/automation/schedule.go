// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package automation

import (
	"strconv"
	"strings"
	"time"

	"github.com/communehq/commune/internal/models"
)

// Schedule types accepted in trigger configs. An empty type defaults to
// daily; anything else unrecognized is never due.
const (
	ScheduleHourly  = "hourly"
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
	ScheduleOnce    = "once"
)

// IsDue reports whether a scheduled automation should fire at now.
//
// The same-minute guard applies first: an automation that already fired in
// now's calendar minute is never due again within it, regardless of type.
func IsDue(a *models.Automation, now time.Time) bool {
	last := a.LastTriggeredAt
	if last != nil && sameMinute(*last, now) {
		return false
	}

	hour, minute := parseClockTime(a.TriggerConfig.Time)

	scheduleType := a.TriggerConfig.ScheduleType
	if scheduleType == "" {
		scheduleType = ScheduleDaily
	}

	switch scheduleType {
	case ScheduleHourly:
		if now.Minute() != minute {
			return false
		}
		// Hour-level de-dup on top of the same-minute guard.
		return last == nil || !sameHour(*last, now)

	case ScheduleDaily, ScheduleWeekly:
		return weekdayAllowed(a.TriggerConfig.Days, now) &&
			now.Hour() == hour && now.Minute() == minute

	case ScheduleMonthly:
		return now.Day() == 1 && now.Hour() == hour && now.Minute() == minute

	case ScheduleOnce:
		return last == nil && now.Hour() == hour && now.Minute() == minute

	default:
		return false
	}
}

// parseClockTime parses a lenient "HH:MM" string. Each component defaults
// to 0 independently when missing or non-numeric, so "bad" is 00:00 and
// "12:xx" is 12:00.
func parseClockTime(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) > 0 {
		if h, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			hour = h
		}
	}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			minute = m
		}
	}
	return hour, minute
}

// weekdayAllowed reports whether now's weekday passes the days filter.
// An empty filter allows every day. Days use three-letter codes matching
// time.Weekday prefixes ("Sun" through "Sat").
func weekdayAllowed(days []string, now time.Time) bool {
	if len(days) == 0 {
		return true
	}
	code := now.Weekday().String()[:3]
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), code) {
			return true
		}
	}
	return false
}

// sameMinute and sameHour compare instants, not calendar fields: the
// cursor is persisted in UTC while now typically carries the host zone.
func sameMinute(a, b time.Time) bool {
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}

func sameHour(a, b time.Time) bool {
	return a.Truncate(time.Hour).Equal(b.Truncate(time.Hour))
}
