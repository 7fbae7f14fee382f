// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tokenstore

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/askmydocs/askmydocs-tui/internal/logging"
)

// TokenKey is the fixed key the session token is stored under.
const TokenKey = "am_token"

// ErrEmptyToken is returned when saving an empty token.
var ErrEmptyToken = errors.New("token must not be empty")

// KV is the minimal key-value surface a backend must provide.
// Get reports ok=false for a missing key; Delete of a missing key is not an error.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Store holds at most one bearer token.
type Store struct {
	mu     sync.Mutex
	kv     KV
	logger *slog.Logger
}

// New wraps kv. A nil logger discards output.
func New(kv KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logging.OrDiscard(logger)}
}

// Save persists token and makes it the active session token.
func (s *Store) Save(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(TokenKey, token); err != nil {
		s.logger.Error("token save failed", "err", err)
		return err
	}
	s.logger.Debug("token saved")
	return nil
}

// Get returns the persisted token. Backend failures are logged and reported
// as absent, so callers only ever see (token, true) or ("", false).
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		s.logger.Warn("token read failed, treating as absent", "err", err)
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Clear removes the persisted token. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(TokenKey); err != nil {
		s.logger.Error("token clear failed", "err", err)
		return err
	}
	s.logger.Debug("token cleared")
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}
