// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/communehq/commune/internal/logging"
)

// ErrStoreClosed indicates the revocation store has been closed.
var ErrStoreClosed = errors.New("revocation store is closed")

// RevocationStore tracks revoked session jtis. Entries expire with the
// token they belong to.
type RevocationStore interface {
	// Revoke marks a jti as revoked for ttl.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	Close() error
}

// MemoryRevocationStore is an in-memory store for tests. Revocations are
// lost on restart.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	closed  bool
}

// NewMemoryRevocationStore creates an in-memory revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]time.Time)}
}

// Revoke marks a jti as revoked.
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.entries[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a jti is revoked and unexpired.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrStoreClosed
	}
	expires, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expires), nil
}

// Close closes the store.
func (s *MemoryRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// BadgerRevocationStore is the production revocation store. BadgerDB's
// native key TTL expires entries without a cleanup routine.
type BadgerRevocationStore struct {
	db     *badger.DB
	prefix []byte
	mu     sync.RWMutex
	closed bool
}

// NewBadgerRevocationStore opens a BadgerDB at path for session
// revocation state.
func NewBadgerRevocationStore(path string) (*BadgerRevocationStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerRevocationStore{
		db:     db,
		prefix: []byte("revoked:"),
	}, nil
}

func (s *BadgerRevocationStore) makeKey(jti string) []byte {
	return append(s.prefix, []byte(jti)...)
}

// Revoke marks a jti as revoked for ttl.
func (s *BadgerRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(s.makeKey(jti), []byte{1}).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// IsRevoked reports whether a jti is revoked.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrStoreClosed
	}

	revoked := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.makeKey(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		revoked = true
		return nil
	})
	return revoked, err
}

// Close closes the underlying BadgerDB.
func (s *BadgerRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close revocation store")
		return err
	}
	return nil
}
