// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Wiring shared by every command.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/askmydocs/askmydocs-tui/internal/api"
	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/logging"
	"github.com/askmydocs/askmydocs-tui/internal/session"
	"github.com/askmydocs/askmydocs-tui/internal/tokenstore"
)

// Env is everything a command needs: configuration, the API client with
// the stored token installed, the token store and the session controller.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Client *api.Client
	Store  *tokenstore.Store
	Ctrl   *auth.Controller

	Out    io.Writer
	Err    io.Writer
	In     io.Reader
	Prompt Prompter

	// Clock drives the chat idle monitor; nil uses the wall clock.
	Clock session.Clock
	// NewLineReader opens chat input; nil uses a liner terminal.
	NewLineReader func() LineReader

	logCloser io.Closer
}

// Setup loads configuration, applies command-line overrides and wires the
// session components. The caller must Close the returned Env.
func Setup(args Args) (*Env, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config: cfg,
		Out:    os.Stdout,
		Err:    os.Stderr,
		In:     os.Stdin,
		Prompt: TerminalPrompter{},
	}

	logCfg := logging.Config{Level: cfg.Log.Level, File: cfg.Log.File, Stderr: args.Verbose}
	if args.Verbose {
		logCfg.Level = "debug"
	}
	if lg, err := logging.New(logCfg); err == nil {
		env.Logger = lg.Logger
		env.logCloser = lg
	} else {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		env.Logger = logging.Discard()
	}

	store, err := tokenstore.Open(cfg.Storage, env.Logger)
	if err != nil {
		env.Close()
		return nil, NewCommandError("setup", "open token store", cfg.Storage.Backend, err)
	}
	env.Wire(store)
	return env, nil
}

// Wire builds the client and controller around store from env.Config.
func (e *Env) Wire(store *tokenstore.Store) {
	e.Store = store
	e.Client = api.NewClient(e.Config.API.BaseURL).
		WithTimeout(e.Config.API.Timeout()).
		WithUploadTimeout(e.Config.API.UploadTimeout()).
		WithLogger(e.Logger)
	e.Ctrl = auth.New(e.Client, store, nil).
		WithLogger(e.Logger).
		WithDefaultModel(e.Config.Query.DefaultModel)
	e.Ctrl.Restore()
}

// Close releases the token store and log file.
func (e *Env) Close() error {
	var first error
	if e.Store != nil {
		first = e.Store.Close()
	}
	if e.logCloser != nil {
		if err := e.logCloser.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LoadConfig loads configuration the way every command does: --config
// when given, otherwise the standard search, then flag overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, NewCommandError("config", "load", args.ConfigPath, err)
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, NewCommandError("config", "load", "invalid configuration", err)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	if args.APIBase != "" {
		cfg.API.BaseURL = args.APIBase
	}
	if args.Storage != "" && args.Storage != cfg.Storage.Backend {
		cfg.Storage.Backend = args.Storage
		cfg.Storage.Path = ""
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewCommandError("config", "validate", "invalid flags", err)
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// info writes human-readable text. In JSON mode it goes to stderr so stdout
// stays parseable.
func (e *Env) info(args Args, format string, a ...interface{}) {
	if args.Quiet {
		return
	}
	w := e.Out
	if args.JSON {
		w = e.Err
	}
	fmt.Fprintf(w, format, a...)
}

// result prints data as a JSON response in JSON mode, or calls text.
func (e *Env) result(args Args, command string, data interface{}, text func(w io.Writer)) error {
	if args.JSON {
		return NewJSONResponse(command, data).Write(e.Out)
	}
	text(e.Out)
	return nil
}
