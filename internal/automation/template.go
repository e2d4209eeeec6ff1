// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package automation

import (
	"strings"
	"time"
)

// Template placeholder fallbacks when no acting bot or channel resolves.
const (
	fallbackActorName   = "System"
	fallbackChannelName = "Channel"

	// emptyRenderedContent replaces templates that render to nothing.
	emptyRenderedContent = "[Automated post]"
)

// RenderTemplate substitutes the closed placeholder set {user}, {channel}
// and {date} via literal string replacement. No escaping, no nesting. The
// result is trimmed; an empty result yields a literal placeholder message.
func RenderTemplate(template, actorName, channelName string, now time.Time, dateFormat string) string {
	if actorName == "" {
		actorName = fallbackActorName
	}
	if channelName == "" {
		channelName = fallbackChannelName
	}

	content := template
	content = strings.ReplaceAll(content, "{user}", actorName)
	content = strings.ReplaceAll(content, "{channel}", channelName)
	content = strings.ReplaceAll(content, "{date}", now.Format(dateFormat))

	content = strings.TrimSpace(content)
	if content == "" {
		return emptyRenderedContent
	}
	return content
}
