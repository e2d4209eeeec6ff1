// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package automation

import (
	"testing"
	"time"

	"github.com/communehq/commune/internal/models"
)

func scheduled(scheduleType, clock string, days []string, last *time.Time) *models.Automation {
	return &models.Automation{
		ID:       "auto-1",
		IsActive: true,
		TriggerConfig: models.ScheduleConfig{
			ScheduleType: scheduleType,
			Time:         clock,
			Days:         days,
		},
		LastTriggeredAt: last,
	}
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestSameMinuteGuard(t *testing.T) {
	now := at(2026, time.March, 2, 9, 0) // a Monday
	lastSameMinute := now.Add(30 * time.Second)

	for _, scheduleType := range []string{
		ScheduleHourly, ScheduleDaily, ScheduleWeekly, ScheduleMonthly, ScheduleOnce,
	} {
		a := scheduled(scheduleType, "09:00", nil, &lastSameMinute)
		if IsDue(a, now) {
			t.Errorf("%s: expected not due within the same minute as last trigger", scheduleType)
		}
	}
}

func TestSameMinuteGuardAcrossTimeZones(t *testing.T) {
	// The cursor is stored in UTC while now carries the host zone; the
	// guard must compare instants, not calendar fields.
	cet := time.FixedZone("CET", 3600)
	now := time.Date(2026, time.March, 2, 9, 0, 20, 0, cet)
	last := now.Add(-10 * time.Second).UTC()

	for _, scheduleType := range []string{
		ScheduleHourly, ScheduleDaily, ScheduleWeekly, ScheduleOnce,
	} {
		a := scheduled(scheduleType, "09:00", nil, &last)
		if IsDue(a, now) {
			t.Errorf("%s: expected not due when the UTC cursor falls in now's minute", scheduleType)
		}
	}
}

func TestHourlyDedupAcrossTimeZones(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	fired := time.Date(2026, time.March, 2, 14, 10, 0, 0, cet).UTC()
	a := scheduled(ScheduleHourly, "00:30", nil, &fired)

	// 14:30 CET shares the firing's instant-hour despite the UTC cursor
	// reading 13:10.
	if IsDue(a, time.Date(2026, time.March, 2, 14, 30, 0, 0, cet)) {
		t.Error("expected hour-level de-dup to hold across zone representations")
	}
	if !IsDue(a, time.Date(2026, time.March, 2, 15, 30, 0, 0, cet)) {
		t.Error("expected due again the next hour")
	}
}

func TestHourlyFiresAtConfiguredMinute(t *testing.T) {
	a := scheduled(ScheduleHourly, "00:30", nil, nil)

	if !IsDue(a, at(2026, time.March, 2, 14, 30)) {
		t.Error("expected due at minute 30")
	}
	if IsDue(a, at(2026, time.March, 2, 14, 31)) {
		t.Error("expected not due at minute 31")
	}
}

func TestHourlyOncePerHour(t *testing.T) {
	fired := at(2026, time.March, 2, 14, 30)
	a := scheduled(ScheduleHourly, "00:30", nil, &fired)

	// Same hour, even at the configured minute on a later check, stays off.
	if IsDue(a, at(2026, time.March, 2, 14, 30)) {
		t.Error("expected hour-level de-dup after firing")
	}
	if !IsDue(a, at(2026, time.March, 2, 15, 30)) {
		t.Error("expected due again the next hour")
	}
}

func TestDailyExactTimeMatch(t *testing.T) {
	a := scheduled(ScheduleDaily, "09:00", nil, nil)

	if !IsDue(a, at(2026, time.March, 2, 9, 0)) {
		t.Error("expected due at 09:00")
	}
	if IsDue(a, at(2026, time.March, 2, 9, 1)) {
		t.Error("expected not due at 09:01")
	}
	if IsDue(a, at(2026, time.March, 2, 10, 0)) {
		t.Error("expected not due at 10:00")
	}
}

func TestDailyWeekdayFilter(t *testing.T) {
	a := scheduled(ScheduleDaily, "09:00", []string{"Mon"}, nil)

	monday := at(2026, time.March, 2, 9, 0)
	if monday.Weekday() != time.Monday {
		t.Fatalf("test date is %v, expected Monday", monday.Weekday())
	}
	if !IsDue(a, monday) {
		t.Error("expected due on Monday at the configured time")
	}

	for d := 1; d <= 6; d++ {
		day := monday.AddDate(0, 0, d)
		if IsDue(a, day) {
			t.Errorf("expected not due on %v even at the exact time", day.Weekday())
		}
	}
}

func TestWeeklyBehavesLikeDailyWithDays(t *testing.T) {
	a := scheduled(ScheduleWeekly, "18:15", []string{"Fri"}, nil)

	friday := at(2026, time.March, 6, 18, 15)
	if friday.Weekday() != time.Friday {
		t.Fatalf("test date is %v, expected Friday", friday.Weekday())
	}
	if !IsDue(a, friday) {
		t.Error("expected due on Friday at configured time")
	}
	if IsDue(a, friday.AddDate(0, 0, 1)) {
		t.Error("expected not due on Saturday")
	}
}

func TestMonthlyFirstOfMonthOnly(t *testing.T) {
	a := scheduled(ScheduleMonthly, "08:00", nil, nil)

	if !IsDue(a, at(2026, time.April, 1, 8, 0)) {
		t.Error("expected due on the 1st at 08:00")
	}
	if IsDue(a, at(2026, time.April, 2, 8, 0)) {
		t.Error("expected not due on the 2nd at the same time")
	}
}

func TestOnceFiresAtMostOnce(t *testing.T) {
	a := scheduled(ScheduleOnce, "12:00", nil, nil)

	if !IsDue(a, at(2026, time.March, 2, 12, 0)) {
		t.Error("expected due when never fired")
	}

	fired := at(2026, time.March, 2, 12, 0)
	a.LastTriggeredAt = &fired
	for _, later := range []time.Time{
		at(2026, time.March, 3, 12, 0),
		at(2026, time.April, 2, 12, 0),
		at(2027, time.March, 2, 12, 0),
	} {
		if IsDue(a, later) {
			t.Errorf("expected permanently not due after firing, got due at %v", later)
		}
	}
}

func TestEmptyScheduleTypeDefaultsToDaily(t *testing.T) {
	a := scheduled("", "09:00", nil, nil)

	if !IsDue(a, at(2026, time.March, 2, 9, 0)) {
		t.Error("expected empty schedule type to behave as daily")
	}
}

func TestUnknownScheduleTypeNeverDue(t *testing.T) {
	a := scheduled("fortnightly", "09:00", nil, nil)

	if IsDue(a, at(2026, time.March, 2, 9, 0)) {
		t.Error("expected unknown schedule type to never be due")
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input  string
		hour   int
		minute int
	}{
		{"09:30", 9, 30},
		{"00:00", 0, 0},
		{"bad", 0, 0},
		{"", 0, 0},
		{"12:xx", 12, 0},
		{"xx:45", 0, 45},
		{"7", 7, 0},
		{" 8 : 15 ", 8, 15},
	}

	for _, tt := range tests {
		hour, minute := parseClockTime(tt.input)
		if hour != tt.hour || minute != tt.minute {
			t.Errorf("parseClockTime(%q) = %d:%d, expected %d:%d",
				tt.input, hour, minute, tt.hour, tt.minute)
		}
	}
}

func TestMalformedTimeMatchesMidnight(t *testing.T) {
	a := scheduled(ScheduleDaily, "bad", nil, nil)

	if !IsDue(a, at(2026, time.March, 2, 0, 0)) {
		t.Error("expected malformed time to fire at 00:00")
	}
	if IsDue(a, at(2026, time.March, 2, 9, 0)) {
		t.Error("expected malformed time not to fire at 09:00")
	}
}

func TestWeekdayFilterCaseInsensitive(t *testing.T) {
	a := scheduled(ScheduleDaily, "09:00", []string{"mon", " TUE "}, nil)

	monday := at(2026, time.March, 2, 9, 0)
	if !IsDue(a, monday) {
		t.Error("expected lowercase day code to match")
	}
	if !IsDue(a, monday.AddDate(0, 0, 1)) {
		t.Error("expected padded uppercase day code to match")
	}
}
