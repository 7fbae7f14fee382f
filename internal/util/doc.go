// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the askmydocs client.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe write used for the session and config files
//   - EnsurePrivateDir: creates the per-user state directory with 0700
//
// Display:
//   - Truncate: width-aware truncation for status lines and tables
//   - Pad: right-pads to a display width
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	line := util.Truncate(filename, 32)
package util
