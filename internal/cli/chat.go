// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive question loop with idle sign-out.
//
// Every line typed counts as a key press for the inactivity monitor. After
// 15 minutes without input the session is signed out; liner owns the
// terminal while prompting, so the expiry is reported once the pending
// prompt returns.
//
// Interactive commands:
//
//	/help            Show commands
//	/model [name]    Show or switch the answer model
//	/sources         Toggle source listings
//	/whoami          Show the signed-in account
//	/idle            Show time left before sign-out
//	/logout          Sign out and leave
//	/quit            Leave (Ctrl+D also works)
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/session"
)

// MsgSessionExpired is shown when the idle monitor signs the user out.
const MsgSessionExpired = "Session expired due to inactivity"

// errQuit ends the chat loop without an error.
var errQuit = errors.New("quit")

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads one line of chat input.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(configDir, "chat_history")}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads a line and records non-empty input in history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (c *ChatCLI) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// chatSession is the state of one chat loop.
type chatSession struct {
	env         *Env
	args        Args
	model       string
	showSources bool
	monitor     *session.Monitor
	bus         *session.Bus
	asked       int
}

// HandleChat runs the interactive loop until the user quits, signs out, or
// is signed out for inactivity.
func HandleChat(env *Env, args Args) error {
	if _, ok := env.Store.Get(); !ok {
		return &auth.Error{Kind: auth.KindAuth, Op: "chat", Message: "Not signed in. Run: askmydocs login"}
	}

	p := NewArgParser(args.Rest)
	model := p.Flag("model", "m")
	if model == "" {
		model = env.Config.Query.DefaultModel
	}
	if !config.IsValidModel(model) {
		return NewValidationErrorWithExample("model", model, "unknown model", "askmydocs chat --model llama3")
	}

	s := &chatSession{
		env:         env,
		args:        args,
		model:       model,
		showSources: env.Config.Query.ShowSources,
		bus:         session.NewBus(),
	}
	s.monitor = session.NewMonitor(session.Config{
		Clock:  env.Clock,
		Logger: env.Logger,
		OnExpire: func() {
			_ = env.Ctrl.Logout()
		},
		OnWarning: func(remaining time.Duration) {
			fmt.Fprintf(env.Err, "\n%s Signing out in %s unless you type something\n",
				WarningStyle.Render("[IDLE]"), session.FormatDuration(remaining))
		},
	})
	dispose := s.monitor.Mount(s.bus)
	defer dispose()

	newReader := env.NewLineReader
	if newReader == nil {
		newReader = func() LineReader { return NewChatCLI() }
	}
	in := newReader()
	defer in.Close()

	fmt.Fprintf(env.Out, "%s %s\n", TitleStyle.Render("askmydocs chat"),
		DimStyle.Render("model "+model+" | /help for commands | idle sign-out after "+
			session.FormatDuration(s.monitor.IdleLimit())))

	for {
		input, err := in.ReadInput("ask> ")
		if s.monitor.Status().Expired {
			fmt.Fprintf(env.Out, "\n%s %s\n", WarningStyle.Render("[SIGNED OUT]"), MsgSessionExpired)
			return &auth.Error{Kind: auth.KindAuth, Op: "chat", Message: MsgSessionExpired}
		}
		if err != nil {
			// Ctrl+C (liner.ErrPromptAborted) and Ctrl+D (io.EOF) both leave.
			fmt.Fprintln(env.Out)
			s.summary()
			return nil
		}
		s.bus.Publish(session.KeyPress)

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if err := s.command(input); err != nil {
				if errors.Is(err, errQuit) {
					s.summary()
					return nil
				}
				fmt.Fprintf(env.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), auth.Message(err))
			}
			continue
		}
		s.ask(input)
	}
}

func (s *chatSession) ask(question string) {
	reply, err := s.env.Ctrl.Ask(context.Background(), question, s.model)
	if err != nil {
		fmt.Fprintf(s.env.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), auth.Message(err))
		return
	}
	s.asked++
	displayAnswer(s.env.Out, reply, s.showSources, s.env.Config.UI.WordWrap)
}

func (s *chatSession) command(input string) error {
	fields := strings.Fields(input)
	out := s.env.Out
	switch strings.ToLower(fields[0]) {
	case "/help", "/h":
		fmt.Fprintln(out, "/model [name]  /sources  /whoami  /idle  /logout  /quit")
	case "/model", "/m":
		if len(fields) == 1 {
			fmt.Fprintf(out, "Model: %s\n", s.model)
			return nil
		}
		if !config.IsValidModel(fields[1]) {
			return NewValidationError("model", fields[1], "use llama3 or openai")
		}
		s.model = fields[1]
		fmt.Fprintf(out, "Model set to %s\n", s.model)
	case "/sources":
		s.showSources = !s.showSources
		fmt.Fprintf(out, "Sources %s\n", onOff(s.showSources))
	case "/whoami":
		user, err := s.env.Ctrl.CurrentUser(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
	case "/idle":
		fmt.Fprintf(out, "Signing out after %s without input\n", session.FormatDuration(s.monitor.Remaining()))
	case "/logout":
		if err := s.env.Ctrl.Logout(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s Signed out\n", SuccessStyle.Render("[OK]"))
		return errQuit
	case "/quit", "/q", "/exit":
		return errQuit
	default:
		return NewValidationErrorWithExample("command", fields[0], "unknown chat command", "/help")
	}
	return nil
}

func (s *chatSession) summary() {
	if s.args.Quiet {
		return
	}
	fmt.Fprintf(s.env.Out, "%s\n", DimStyle.Render(fmt.Sprintf("%d question(s) asked", s.asked)))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
