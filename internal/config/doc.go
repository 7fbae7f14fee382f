// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for askmydocs.
//
// TOML, YAML and JSON files are supported, with defaults, a .env file,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - APIConfig: backend base URL and request timeouts
//   - StorageConfig: where the session token is persisted
//   - QueryConfig: default answer model
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ASKMYDOCS_*, and VITE_API_BASE for the base URL)
//   - .env in the working directory
//   - ~/.askmydocs/config.toml
//   - ~/.askmydocs/config.yaml
//   - ~/.askmydocs/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(cfg.API.BaseURL)
package config
