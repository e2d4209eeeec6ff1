// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package actionlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockStore struct {
	mu      sync.Mutex
	saved   []Entry
	saveErr error
}

func (m *mockStore) Save(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, *e)
	return nil
}

func (m *mockStore) Query(_ context.Context, _ Filter) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.saved...), nil
}

func (m *mockStore) Count(_ context.Context, _ Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.saved)), nil
}

func (m *mockStore) Delete(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []Entry
	var deleted int64
	for _, e := range m.saved {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.saved = kept
	return deleted, nil
}

func (m *mockStore) entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.saved...)
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	store := &mockStore{}
	rec := NewRecorder(store, &Config{BufferSize: 10, RetentionDays: 90, CleanupInterval: time.Hour})

	rec.Record(&Entry{AutomationID: "auto-1", ActionType: "send_post", Success: true})

	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := store.entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" {
		t.Error("expected generated ID")
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestRecordSuccessAndFailure(t *testing.T) {
	store := &mockStore{}
	rec := NewRecorder(store, nil)

	rec.RecordSuccess("auto-1", "bot-1", "send_post", "scheduled", "chan-1",
		map[string]string{"post_id": "p1"})
	rec.RecordFailure("auto-2", "bot-1", "send_post", "scheduled", "", "Missing channel_id")

	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := store.entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	var success, failure *Entry
	for i := range entries {
		if entries[i].Success {
			success = &entries[i]
		} else {
			failure = &entries[i]
		}
	}
	if success == nil || failure == nil {
		t.Fatal("expected one success and one failure entry")
	}
	if success.ChannelID != "chan-1" {
		t.Errorf("expected channel chan-1, got %q", success.ChannelID)
	}
	if failure.ErrorMessage != "Missing channel_id" {
		t.Errorf("expected error message preserved, got %q", failure.ErrorMessage)
	}
}

func TestStoreErrorIsSwallowed(t *testing.T) {
	store := &mockStore{saveErr: errors.New("disk full")}
	rec := NewRecorder(store, nil)

	// Record must not propagate store failures to the caller.
	rec.Record(&Entry{AutomationID: "auto-1", ActionType: "send_post"})

	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFullBufferDropsEntry(t *testing.T) {
	// Recorder with no writer running to guarantee a full buffer: fill the
	// channel directly, then Record must return without blocking.
	rec := &Recorder{
		config:    &Config{BufferSize: 1},
		store:     &mockStore{},
		entryChan: make(chan *Entry, 1),
		stopChan:  make(chan struct{}),
	}
	rec.entryChan <- &Entry{}

	done := make(chan struct{})
	go func() {
		rec.Record(&Entry{AutomationID: "auto-1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on full buffer")
	}
}

func TestCleanupDeletesOldEntries(t *testing.T) {
	store := &mockStore{}
	old := Entry{ID: "old", CreatedAt: time.Now().AddDate(0, 0, -120)}
	fresh := Entry{ID: "fresh", CreatedAt: time.Now()}
	store.saved = []Entry{old, fresh}

	rec := NewRecorder(store, &Config{BufferSize: 1, RetentionDays: 90, CleanupInterval: time.Hour})
	defer func() { _ = rec.Close() }()

	deleted, err := rec.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if entries := store.entries(); len(entries) != 1 || entries[0].ID != "fresh" {
		t.Errorf("expected only fresh entry to remain, got %+v", entries)
	}
}
