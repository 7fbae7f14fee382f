// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the one-shot commands of
// askmydocs.
//
// # Key Types
//
//   - Command: enumeration of the available commands
//   - Args: parsed global flags plus the remaining arguments
//   - Env: the wired config, logger, API client, token store and controller
//     a command runs against
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	env, err := cli.Setup(args)
//	if err != nil { ... }
//	defer env.Close()
//	err = cli.Run(env, cmd, args)
//
// Every command supports --json, which prints a JSONResponse on stdout and
// sends human-readable text to stderr.
package cli
