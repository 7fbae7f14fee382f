// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive input for commands run without flags.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Prompter asks the user for a line of input. Secret must not echo.
type Prompter interface {
	Line(label string) (string, error)
	Secret(label string) (string, error)
}

// TerminalPrompter reads from stdin and writes labels to stderr so stdout
// stays clean for --json output.
type TerminalPrompter struct{}

var (
	stdinReader     *bufio.Reader
	stdinReaderOnce sync.Once
)

func stdin() *bufio.Reader {
	stdinReaderOnce.Do(func() {
		stdinReader = bufio.NewReader(os.Stdin)
	})
	return stdinReader
}

// Line reads one line of visible input.
func (TerminalPrompter) Line(label string) (string, error) {
	if !IsTTY() {
		return "", &TTYRequiredError{Operation: "prompt for " + strings.ToLower(label)}
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := stdin().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret reads one line without echo.
func (TerminalPrompter) Secret(label string) (string, error) {
	if !IsTTY() {
		return "", &TTYRequiredError{Operation: "prompt for " + strings.ToLower(label)}
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ScriptedPrompter answers prompts from a fixed list, in order. It is used
// when input is piped and by tests.
type ScriptedPrompter struct {
	mu      sync.Mutex
	Answers []string
	Asked   []string
}

// Line returns the next scripted answer.
func (s *ScriptedPrompter) Line(label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, label)
	if len(s.Answers) == 0 {
		return "", io.EOF
	}
	next := s.Answers[0]
	s.Answers = s.Answers[1:]
	return next, nil
}

// Secret returns the next scripted answer.
func (s *ScriptedPrompter) Secret(label string) (string, error) {
	return s.Line(label)
}

// valueOrPrompt returns the flag value, or asks for it when the flag is
// absent.
func valueOrPrompt(p *ArgParser, prompt Prompter, label string, secret bool, names ...string) (string, error) {
	if v, ok := p.Lookup(names...); ok {
		return v, nil
	}
	if secret {
		return prompt.Secret(label)
	}
	return prompt.Line(label)
}
