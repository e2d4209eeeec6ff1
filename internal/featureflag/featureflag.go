// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

// Package featureflag gates functionality on database-stored flags.
//
// Lookups are cached for a short TTL so hot paths such as the automation
// run endpoint do not hit the database on every request. A flag with no
// stored value resolves to the caller-supplied fallback.
package featureflag

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/communehq/commune/internal/database"
	"github.com/communehq/commune/internal/logging"
)

// Automations is the flag gating the scheduled automation engine.
const Automations = "automations"

// Store reads and writes persisted flag values.
type Store interface {
	GetFlag(ctx context.Context, name string) (bool, error)
	SetFlag(ctx context.Context, name string, enabled bool) error
	ListFlags(ctx context.Context) (map[string]bool, error)
}

type cachedValue struct {
	enabled   bool
	fetchedAt time.Time
}

// Service resolves feature flags with TTL caching.
type Service struct {
	store Store
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[string]cachedValue

	now func() time.Time
}

// New creates a flag service. A non-positive ttl disables caching.
func New(store Store, ttl time.Duration) *Service {
	return &Service{
		store: store,
		ttl:   ttl,
		cache: make(map[string]cachedValue),
		now:   time.Now,
	}
}

// IsEnabled resolves a flag. A missing stored value or a store error
// resolves to fallback; store errors are logged.
func (s *Service) IsEnabled(ctx context.Context, name string, fallback bool) bool {
	if s.ttl > 0 {
		s.mu.RLock()
		cached, ok := s.cache[name]
		s.mu.RUnlock()
		if ok && s.now().Sub(cached.fetchedAt) < s.ttl {
			return cached.enabled
		}
	}

	enabled, err := s.store.GetFlag(ctx, name)
	if errors.Is(err, database.ErrNotFound) {
		enabled = fallback
	} else if err != nil {
		logging.Warn().Err(err).Str("flag", name).Msg("Feature flag lookup failed, using fallback")
		return fallback
	}

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[name] = cachedValue{enabled: enabled, fetchedAt: s.now()}
		s.mu.Unlock()
	}
	return enabled
}

// Set persists a flag value and invalidates the cache entry.
func (s *Service) Set(ctx context.Context, name string, enabled bool) error {
	if err := s.store.SetFlag(ctx, name, enabled); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
	return nil
}

// List returns all persisted flags.
func (s *Service) List(ctx context.Context) (map[string]bool, error) {
	return s.store.ListFlags(ctx)
}
