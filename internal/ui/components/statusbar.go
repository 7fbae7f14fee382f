// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR - Bottom line with state, idle countdown and key hints
// =============================================================================

// Status is the application's activity state.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusError
	StatusSignedOut
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Working..."
	case StatusError:
		return "Error"
	case StatusSignedOut:
		return "Signed out"
	default:
		return "Unknown"
	}
}

// Icon returns a marker so status reads without color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "-"
	}
}

// KeyHint is one "key action" pair.
type KeyHint struct {
	Key    string
	Action string
}

// StatusBar renders the bottom line.
type StatusBar struct {
	Status  Status
	Spinner string
	// Idle is the time left before sign-out; zero hides the countdown.
	Idle    time.Duration
	Warning bool
	Hints   []KeyHint
	Width   int
	theme   *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the width.
func (s *StatusBar) SetWidth(width int) { s.Width = width }

// View renders the status bar.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}

	state := s.Status.Icon() + " " + s.Status.String()
	if s.Status == StatusLoading && s.Spinner != "" {
		state = s.Spinner + " " + s.Status.String()
	}
	left := state
	if s.Idle > 0 {
		idle := "idle sign-out " + FormatCountdown(s.Idle)
		if s.Warning {
			idle = s.theme.StatusWarning.Render(idle)
		}
		left += "  " + idle
	}

	hints := make([]string, 0, len(s.Hints))
	for _, h := range s.Hints {
		hints = append(hints, s.theme.StatusKey.Render(h.Key)+" "+h.Action)
	}
	right := strings.Join(hints, "  ")

	inner := width - 2
	for len(hints) > 0 && lipgloss.Width(left)+lipgloss.Width(right)+1 > inner {
		hints = hints[:len(hints)-1]
		right = strings.Join(hints, "  ")
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
