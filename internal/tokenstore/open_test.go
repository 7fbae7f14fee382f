// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tokenstore

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmydocs/askmydocs-tui/internal/config"
)

func TestOpenKV_Backends(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	testCases := []struct {
		name string
		cfg  config.StorageConfig
		want interface{}
	}{
		{"file", config.StorageConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "s.json")}, &FileKV{}},
		{"sqlite", config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "s.db")}, &SQLiteKV{}},
		{"redis", config.StorageConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()}, &RedisKV{}},
		{"memory", config.StorageConfig{Backend: config.BackendMemory}, &MemoryKV{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kv, err := OpenKV(tc.cfg)
			require.NoError(t, err)
			defer kv.Close()
			assert.IsType(t, tc.want, kv)
		})
	}
}

func TestOpenKV_Errors(t *testing.T) {
	_, err := OpenKV(config.StorageConfig{Backend: "floppy"})
	assert.Error(t, err)

	_, err = OpenKV(config.StorageConfig{Backend: config.BackendFile})
	assert.Error(t, err, "file backend needs a path")
}

func TestOpen_ReturnsWorkingStore(t *testing.T) {
	s, err := Open(config.StorageConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save("tok"))
	got, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "tok", got)
}
