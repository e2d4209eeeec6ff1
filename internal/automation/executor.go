// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/communehq/commune/internal/actionlog"
	"github.com/communehq/commune/internal/database"
	"github.com/communehq/commune/internal/logging"
	"github.com/communehq/commune/internal/models"
)

// Outcome is the executor's verdict for one automation.
type Outcome int

const (
	// OutcomeRan means the action was dispatched and the trigger cursor
	// advanced. The not-implemented action branch also counts as ran.
	OutcomeRan Outcome = iota

	// OutcomeSkipped means the automation no-oped on a data problem
	// (missing channel, missing user, inactive bot). The cursor is
	// untouched so the automation stays eligible next cycle.
	OutcomeSkipped
)

// Store is the persistence surface the executor needs.
type Store interface {
	GetBot(ctx context.Context, id string) (*models.Bot, error)
	GetChannel(ctx context.Context, id string) (*models.Channel, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreatePost(ctx context.Context, p *models.Post) error
	AdvanceTriggerCursor(ctx context.Context, id string, firedAt time.Time) error
}

// Executor dispatches due automations.
type Executor struct {
	store      Store
	logs       *actionlog.Recorder
	dateFormat string
	logger     zerolog.Logger
}

// NewExecutor creates an executor. dateFormat is the Go layout for the
// {date} template placeholder.
func NewExecutor(store Store, logs *actionlog.Recorder, dateFormat string) *Executor {
	return &Executor{
		store:      store,
		logs:       logs,
		dateFormat: dateFormat,
		logger:     logging.With().Str("component", "automation_executor").Logger(),
	}
}

// Execute dispatches one due automation. Data problems resolve to
// OutcomeSkipped with a failure action log where the contract requires one;
// infrastructure failures return an error and leave the cursor untouched.
func (e *Executor) Execute(ctx context.Context, a *models.Automation, now time.Time) (Outcome, error) {
	channelID := resolveChannelID(a)
	if channelID == "" {
		e.recordFailure(a, "", "Missing channel_id")
		return OutcomeSkipped, nil
	}

	var bot *models.Bot
	if a.BotID != nil && *a.BotID != "" {
		var err error
		bot, err = e.store.GetBot(ctx, *a.BotID)
		if errors.Is(err, database.ErrNotFound) {
			// Silent no-op until the bot reappears.
			e.logger.Debug().Str("automation_id", a.ID).Str("bot_id", *a.BotID).
				Msg("Bot missing, skipping automation")
			return OutcomeSkipped, nil
		}
		if err != nil {
			return OutcomeSkipped, fmt.Errorf("failed to load bot: %w", err)
		}
		if !bot.IsActive {
			e.logger.Debug().Str("automation_id", a.ID).Str("bot_id", bot.ID).
				Msg("Bot inactive, skipping automation")
			return OutcomeSkipped, nil
		}
	}

	channel, err := e.store.GetChannel(ctx, channelID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return OutcomeSkipped, fmt.Errorf("failed to load channel: %w", err)
	}

	actingUserID, err := e.resolveActingUser(ctx, bot, channel)
	if err != nil {
		return OutcomeSkipped, err
	}
	if actingUserID == "" {
		e.recordFailure(a, channelID, "Missing user for post")
		return OutcomeSkipped, nil
	}

	if !a.ActionType.IsContentPosting() {
		e.recordFailure(a, channelID,
			fmt.Sprintf("Action type not implemented: %s", a.ActionType))
		if err := e.store.AdvanceTriggerCursor(ctx, a.ID, now); err != nil {
			return OutcomeSkipped, fmt.Errorf("failed to advance trigger cursor: %w", err)
		}
		return OutcomeRan, nil
	}

	actorName := ""
	if bot != nil {
		actorName = bot.Name
	}
	channelName := ""
	if channel != nil {
		channelName = channel.Name
	}

	content := RenderTemplate(a.ActionConfig.Template, actorName, channelName, now, e.dateFormat)

	post := &models.Post{
		ChannelID:   channelID,
		UserID:      actingUserID,
		Content:     content,
		IsAutomated: true,
		BotID:       a.BotID,
	}
	if err := e.store.CreatePost(ctx, post); err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to create post: %w", err)
	}

	e.recordSuccess(a, channelID, map[string]string{"post_id": post.ID})

	if err := e.store.AdvanceTriggerCursor(ctx, a.ID, now); err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to advance trigger cursor: %w", err)
	}

	e.logger.Info().
		Str("automation_id", a.ID).
		Str("channel_id", channelID).
		Str("post_id", post.ID).
		Str("action_type", string(a.ActionType)).
		Msg("Automation dispatched")

	return OutcomeRan, nil
}

// resolveChannelID applies the channel override precedence: action config,
// then the automation's default channel, then the schedule config.
func resolveChannelID(a *models.Automation) string {
	if a.ActionConfig.ChannelID != "" {
		return a.ActionConfig.ChannelID
	}
	if a.ChannelID != nil && *a.ChannelID != "" {
		return *a.ChannelID
	}
	return a.TriggerConfig.ChannelID
}

// resolveActingUser returns the user-of-record for posted content: the bot
// owner when a bot acts, else the channel owner. Empty means unresolvable.
func (e *Executor) resolveActingUser(ctx context.Context, bot *models.Bot, channel *models.Channel) (string, error) {
	ownerID := ""
	switch {
	case bot != nil:
		ownerID = bot.OwnerID
	case channel != nil:
		ownerID = channel.OwnerID
	}
	if ownerID == "" {
		return "", nil
	}

	if _, err := e.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load acting user: %w", err)
	}
	return ownerID, nil
}

func (e *Executor) recordSuccess(a *models.Automation, channelID string, details interface{}) {
	if e.logs == nil {
		return
	}
	e.logs.RecordSuccess(a.ID, derefString(a.BotID), string(a.ActionType),
		string(a.TriggerType), channelID, details)
}

func (e *Executor) recordFailure(a *models.Automation, channelID, reason string) {
	if e.logs == nil {
		return
	}
	e.logs.RecordFailure(a.ID, derefString(a.BotID), string(a.ActionType),
		string(a.TriggerType), channelID, reason)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
