// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package models

import "time"

// TriggerType categorizes how an automation is fired.
type TriggerType string

const (
	// TriggerScheduled automations are evaluated by the scheduled runner.
	TriggerScheduled TriggerType = "scheduled"
)

// ActionType identifies the side effect an automation performs when due.
// Unrecognized values are preserved as-is and handled as "not implemented"
// by the executor.
type ActionType string

const (
	ActionSendPost         ActionType = "send_post"
	ActionSendAnnouncement ActionType = "send_announcement"
	ActionSendReminder     ActionType = "send_reminder"
	ActionSendWelcome      ActionType = "send_welcome"
	ActionSendReply        ActionType = "send_reply"
	ActionAutoComment      ActionType = "auto_comment"
)

// IsContentPosting reports whether the action type is one of the recognized
// content-posting kinds that the executor knows how to dispatch.
func (a ActionType) IsContentPosting() bool {
	switch a {
	case ActionSendPost, ActionSendAnnouncement, ActionSendReminder,
		ActionSendWelcome, ActionSendReply, ActionAutoComment:
		return true
	default:
		return false
	}
}

// ScheduleConfig is the trigger configuration of a scheduled automation.
// All fields are optional; the evaluator applies lenient defaults
// (schedule_type "daily", time "00:00", days = every day).
type ScheduleConfig struct {
	// ScheduleType is one of hourly, daily, weekly, monthly, once.
	ScheduleType string `json:"schedule_type,omitempty"`

	// Time is the time of day in "HH:MM". Malformed components parse to 0.
	Time string `json:"time,omitempty"`

	// Days holds three-letter weekday codes ("Sun".."Sat"). Empty means
	// every day applicable to the schedule type.
	Days []string `json:"days,omitempty"`

	// ChannelID optionally overrides the target channel.
	ChannelID string `json:"channel_id,omitempty"`
}

// ActionConfig is the action payload of an automation.
type ActionConfig struct {
	// Template is the content template. Supported placeholders:
	// {user}, {channel}, {date}.
	Template string `json:"template,omitempty"`

	// ChannelID optionally overrides the target channel and takes
	// precedence over the automation's default channel.
	ChannelID string `json:"channel_id,omitempty"`
}

// Automation is a user-configured recurring or one-shot task.
//
// LastTriggeredAt is the trigger cursor: once set it is monotonically
// non-decreasing and always reflects the most recent minute in which the
// automation fired. Only the action executor mutates it (together with
// TriggerCount).
type Automation struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	BotID         *string        `json:"bot_id,omitempty"`
	ChannelID     *string        `json:"channel_id,omitempty"`
	IsActive      bool           `json:"is_active"`
	TriggerType   TriggerType    `json:"trigger_type"`
	TriggerConfig ScheduleConfig `json:"trigger_config"`
	ActionType    ActionType     `json:"action_type"`
	ActionConfig  ActionConfig   `json:"action_config"`
	TriggerCount  int64          `json:"trigger_count"`

	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
