// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package automation

import (
	"testing"
	"time"
)

func TestRenderTemplateSubstitution(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	got := RenderTemplate("Hallo {user} in {channel}!", "Greeter", "general", now, "02.01.2006")
	if got != "Hallo Greeter in general!" {
		t.Errorf("expected rendered greeting, got %q", got)
	}
}

func TestRenderTemplateDate(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	got := RenderTemplate("Today is {date}", "Bot", "general", now, "02.01.2006")
	if got != "Today is 02.03.2026" {
		t.Errorf("expected formatted date, got %q", got)
	}
}

func TestRenderTemplateFallbacks(t *testing.T) {
	now := time.Now()

	got := RenderTemplate("{user} posts in {channel}", "", "", now, "02.01.2006")
	if got != "System posts in Channel" {
		t.Errorf("expected fallback names, got %q", got)
	}
}

func TestRenderTemplateEmptyResult(t *testing.T) {
	now := time.Now()

	for _, template := range []string{"", "   ", "\t\n"} {
		got := RenderTemplate(template, "Bot", "general", now, "02.01.2006")
		if got != emptyRenderedContent {
			t.Errorf("template %q: expected placeholder message, got %q", template, got)
		}
	}
}

func TestRenderTemplateRepeatedPlaceholders(t *testing.T) {
	now := time.Now()

	got := RenderTemplate("{user} and {user}", "Greeter", "general", now, "02.01.2006")
	if got != "Greeter and Greeter" {
		t.Errorf("expected all occurrences replaced, got %q", got)
	}
}
