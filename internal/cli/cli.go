// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for askmydocs.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (set at build time via main).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdRegister
	CmdLogout
	CmdWhoami
	CmdPasswd
	CmdUpload
	CmdAdd
	CmdAsk
	CmdChat
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:      "tui",
	CmdLogin:    "login",
	CmdRegister: "register",
	CmdLogout:   "logout",
	CmdWhoami:   "whoami",
	CmdPasswd:   "passwd",
	CmdUpload:   "upload",
	CmdAdd:      "add",
	CmdAsk:      "ask",
	CmdChat:     "chat",
	CmdStatus:   "status",
	CmdConfig:   "config",
	CmdVersion:  "version",
	CmdHelp:     "help",
}

// String returns the command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// NeedsSession reports whether the command talks to the backend or the
// token store, and so needs a full Env.
func (c Command) NeedsSession() bool {
	switch c {
	case CmdVersion, CmdHelp, CmdConfig, CmdUnknown:
		return false
	}
	return true
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool
	Verbose    bool
	Quiet      bool
	APIBase    string // --api
	Storage    string // --storage
	ConfigPath string // --config

	// Name is the word the user typed for the command.
	Name string

	// Rest holds everything after the command word, flags included.
	// Commands parse it with NewArgParser.
	Rest []string
}

const usageText = `askmydocs - ask questions about your documents from the terminal

Usage:
  askmydocs [global flags] <command> [arguments]

Commands:
  tui                         Start the full-screen interface (default)
  login                       Sign in (--email, --password or prompts)
  register                    Create an account (--name, --email, --password)
  logout                      Forget the stored session token
  whoami                      Show the signed-in account
  passwd                      Change your password
  upload <file>...            Upload .pdf, .txt or .md files
  add [text] [--file F]       Add raw text for indexing (reads stdin with -)
  ask "question" [--model M]  Ask one question (models: llama3, openai)
  chat [--model M]            Interactive questions, signed out after 15m idle
  status                      Show backend, storage and session details
  config [show|get|set|path]  View or edit configuration
  version                     Show version information
  help                        Show this help

Global flags:
  --json                      Print machine-readable JSON on stdout
  -v, --verbose               Log debug output to stderr
  -q, --quiet                 Only print results
  --api URL                   Backend base URL (default http://localhost:8000)
  --storage BACKEND           Token store: file, sqlite, redis, memory
  --config PATH               Read configuration from PATH

Environment:
  ASKMYDOCS_API_BASE          Backend base URL (VITE_API_BASE is also read)
  ASKMYDOCS_STORAGE           Token store backend
  ASKMYDOCS_MODEL             Default answer model
  NO_COLOR                    Disable colored output

Version: %s
`

// PrintUsage writes the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "askmydocs version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
}

// Parse splits argv (without the program name) into a command and its args.
// Global flags may appear before or after the command word.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	args.Name = remaining[0]
	args.Rest = remaining[1:]

	switch strings.ToLower(remaining[0]) {
	case "tui", "ui":
		return CmdTUI, args
	case "login", "signin":
		return CmdLogin, args
	case "register", "signup":
		return CmdRegister, args
	case "logout", "signout":
		return CmdLogout, args
	case "whoami", "me":
		return CmdWhoami, args
	case "passwd", "password":
		return CmdPasswd, args
	case "upload", "up":
		return CmdUpload, args
	case "add":
		return CmdAdd, args
	case "ask", "q":
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "status", "s":
		return CmdStatus, args
	case "config":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts global flags from args and returns the rest.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var (
		remaining []string
		args      Args
	)

	takeValue := func(i *int, flag string) string {
		if v, ok := strings.CutPrefix(argv[*i], flag+"="); ok {
			return v
		}
		if *i+1 < len(argv) {
			*i++
			return argv[*i]
		}
		return ""
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--json":
			args.JSON = true
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "--api" || strings.HasPrefix(arg, "--api="):
			args.APIBase = takeValue(&i, "--api")
		case arg == "--storage" || strings.HasPrefix(arg, "--storage="):
			args.Storage = takeValue(&i, "--storage")
		case arg == "--config" || strings.HasPrefix(arg, "--config="):
			args.ConfigPath = takeValue(&i, "--config")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes cmd. env may be nil for commands that do not need a session.
// The TUI is started by main, not here.
func Run(env *Env, cmd Command, args Args) error {
	switch cmd {
	case CmdLogin:
		return HandleLogin(env, args)
	case CmdRegister:
		return HandleRegister(env, args)
	case CmdLogout:
		return HandleLogout(env, args)
	case CmdWhoami:
		return HandleWhoami(env, args)
	case CmdPasswd:
		return HandlePasswd(env, args)
	case CmdUpload:
		return HandleUpload(env, args)
	case CmdAdd:
		return HandleAdd(env, args)
	case CmdAsk:
		return HandleAsk(env, args)
	case CmdChat:
		return HandleChat(env, args)
	case CmdStatus:
		return HandleStatus(env, args)
	case CmdConfig:
		return HandleConfig(os.Stdout, args)
	case CmdVersion:
		return HandleVersion(os.Stdout, args)
	case CmdHelp:
		PrintUsage(os.Stdout)
		return nil
	case CmdTUI:
		return fmt.Errorf("the TUI is started by the main package")
	default:
		return NewValidationErrorWithExample("command", args.Name, "unknown command", "askmydocs help")
	}
}

// HandleVersion prints version information, as JSON with --json.
func HandleVersion(w io.Writer, args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(w)
	}
	PrintVersion(w)
	return nil
}
