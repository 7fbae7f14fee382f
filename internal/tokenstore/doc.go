// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tokenstore persists the single bearer token of an askmydocs session.
//
// A Store sits on top of a minimal key-value backend (KV) and exposes three
// operations: Save, Get and Clear. The token lives under one fixed key and
// survives process restarts for every backend except memory.
//
// # Backends
//
//   - MemoryKV: process-local, used by tests
//   - FileKV: JSON document written atomically with 0600 permissions (default)
//   - SQLiteKV: single kv table in a local database
//   - RedisKV: prefixed key in a shared redis, optional TTL
//
// # Usage
//
//	store, err := tokenstore.Open(cfg.Storage, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if token, ok := store.Get(); ok {
//	    client.SetAuthToken(token)
//	}
//
// Watch reports changes made to a FileKV document by other processes, so a
// session view can notice a logout performed from another terminal.
package tokenstore
