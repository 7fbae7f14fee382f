// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tokenstore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/askmydocs/askmydocs-tui/internal/config"
)

// Open builds a Store for the configured backend.
func Open(cfg config.StorageConfig, logger *slog.Logger) (*Store, error) {
	kv, err := OpenKV(cfg)
	if err != nil {
		return nil, err
	}
	return New(kv, logger), nil
}

// OpenKV builds only the backend.
func OpenKV(cfg config.StorageConfig) (KV, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("storage.path is required for the file backend")
		}
		return NewFileKV(cfg.Path), nil
	case config.BackendSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("storage.path is required for the sqlite backend")
		}
		return OpenSQLiteKV(cfg.Path)
	case config.BackendRedis:
		kv, err := NewRedisKV(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      time.Duration(cfg.RedisTTLHours) * time.Hour,
		})
		if err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return kv, nil
	case config.BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
