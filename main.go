// askmydocs - Ask questions about your documents from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askmydocs-tui/internal/cli"
	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/router"
	"github.com/askmydocs/askmydocs-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])
	if err := run(cmd, args); err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

func run(cmd cli.Command, args cli.Args) error {
	if !cmd.NeedsSession() {
		return cli.Run(nil, cmd, args)
	}

	if cmd == cli.CmdTUI && (!cli.IsTTY() || !cli.IsStdoutTTY()) {
		return &cli.TTYRequiredError{Operation: "start the interface"}
	}

	env, err := cli.Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	if cmd == cli.CmdTUI {
		return runTUI(env)
	}
	return cli.Run(env, cmd, args)
}

// runTUI starts the full-screen interface and blocks until it exits.
func runTUI(env *cli.Env) error {
	cfg := env.Config

	deps := app.Deps{
		Controller: env.Ctrl,
		Guard:      router.NewGuard(env.Store).WithLogger(env.Logger),
		Config:     cfg,
		Logger:     env.Logger,
	}
	if cfg.Storage.Backend == config.BackendFile {
		deps.WatchPath = cfg.Storage.Path
	}
	m := app.New(deps)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		// All motion, not just drags: pointer movement keeps the session alive.
		opts = append(opts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(m, opts...)
	m.Attach(p)

	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
