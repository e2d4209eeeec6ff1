// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package actionlog

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/communehq/commune/internal/logging"
)

// Config holds configuration for the action log recorder.
type Config struct {
	// BufferSize is the size of the async write buffer.
	BufferSize int

	// RetentionDays is how long to keep entries.
	RetentionDays int

	// CleanupInterval is how often to run retention cleanup.
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BufferSize:      1000,
		RetentionDays:   90,
		CleanupInterval: time.Hour,
	}
}

// Recorder is the async action log writer.
type Recorder struct {
	config    *Config
	store     Store
	entryChan chan *Entry
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewRecorder creates a recorder and starts its async writer.
func NewRecorder(store Store, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		config:    config,
		store:     store,
		entryChan: make(chan *Entry, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	r.wg.Add(1)
	go r.asyncWriter()

	return r
}

func (r *Recorder) asyncWriter() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopChan:
			// Drain remaining entries
			for {
				select {
				case entry := <-r.entryChan:
					r.writeEntry(entry)
				default:
					return
				}
			}
		case entry := <-r.entryChan:
			r.writeEntry(entry)
		}
	}
}

func (r *Recorder) writeEntry(entry *Entry) {
	if r.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.Save(ctx, entry); err != nil {
		logging.Error().Err(err).
			Str("automation_id", entry.AutomationID).
			Msg("Failed to save action log entry")
	}
}

// Record enqueues an entry. Never blocks; a full buffer drops the entry
// with a warning.
func (r *Recorder) Record(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	select {
	case r.entryChan <- entry:
	default:
		logging.Warn().
			Str("automation_id", entry.AutomationID).
			Msg("Action log buffer full, dropping entry")
	}
}

// RecordSuccess records a successful action with optional detail payload.
func (r *Recorder) RecordSuccess(automationID, botID, actionType, triggerType, channelID string, details interface{}) {
	r.Record(&Entry{
		AutomationID: automationID,
		BotID:        botID,
		ActionType:   actionType,
		TriggerType:  triggerType,
		ChannelID:    channelID,
		Details:      mustJSON(details),
		Success:      true,
	})
}

// RecordFailure records a failed action with a reason.
func (r *Recorder) RecordFailure(automationID, botID, actionType, triggerType, channelID, reason string) {
	r.Record(&Entry{
		AutomationID: automationID,
		BotID:        botID,
		ActionType:   actionType,
		TriggerType:  triggerType,
		ChannelID:    channelID,
		Success:      false,
		ErrorMessage: reason,
	})
}

// Query retrieves entries matching the filter.
func (r *Recorder) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	return r.store.Query(ctx, filter)
}

// Count returns the number of entries matching the filter.
func (r *Recorder) Count(ctx context.Context, filter Filter) (int64, error) {
	return r.store.Count(ctx, filter)
}

// Cleanup deletes entries older than the retention window.
func (r *Recorder) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -r.config.RetentionDays)
	return r.store.Delete(ctx, cutoff)
}

// CleanupInterval returns the configured sweep interval.
func (r *Recorder) CleanupInterval() time.Duration {
	return r.config.CleanupInterval
}

// Close shuts down the recorder, draining buffered entries.
func (r *Recorder) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
	return nil
}

func mustJSON(v interface{}) json.RawMessage {
	if v == nil {
		return json.RawMessage("{}")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
