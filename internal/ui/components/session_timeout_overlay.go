// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-tui/internal/ui/styles"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY
// =============================================================================

// SessionTimeoutOverlay warns that the idle sign-out is near, and after
// expiry tells the user why they are back at the login screen.
//
// It only renders state; the inactivity monitor owns the timing. Any
// activity resets the monitor, after which the caller hides the overlay.
type SessionTimeoutOverlay struct {
	visible       bool
	expired       bool
	timeRemaining time.Duration

	width  int
	height int
}

// NewSessionTimeoutOverlay creates a hidden overlay.
func NewSessionTimeoutOverlay() SessionTimeoutOverlay {
	return SessionTimeoutOverlay{}
}

// SetSize sets the area the overlay is centered in.
func (o *SessionTimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// ShowWarning shows the countdown.
func (o *SessionTimeoutOverlay) ShowWarning(remaining time.Duration) {
	o.visible = true
	o.expired = false
	o.timeRemaining = remaining
}

// ShowExpired shows the signed-out notice.
func (o *SessionTimeoutOverlay) ShowExpired() {
	o.visible = true
	o.expired = true
	o.timeRemaining = 0
}

// UpdateTime updates the countdown.
func (o *SessionTimeoutOverlay) UpdateTime(remaining time.Duration) {
	if remaining < 0 {
		remaining = 0
	}
	o.timeRemaining = remaining
}

// Hide hides the overlay.
func (o *SessionTimeoutOverlay) Hide() {
	o.visible = false
	o.expired = false
}

// IsVisible returns whether the overlay is showing.
func (o *SessionTimeoutOverlay) IsVisible() bool { return o.visible }

// IsExpired returns whether the expired notice is showing.
func (o *SessionTimeoutOverlay) IsExpired() bool { return o.visible && o.expired }

// View renders the overlay centered in its area, or "" when hidden.
func (o SessionTimeoutOverlay) View() string {
	if !o.visible {
		return ""
	}
	if o.expired {
		return o.render(styles.Rose, styles.StatusIndicators.Error+" Session Expired",
			"You were signed out after 15 minutes without activity.",
			"Press any key to sign in again")
	}
	timeStyle := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	return o.render(styles.Amber, styles.StatusIndicators.Warning+" Still there?",
		"You will be signed out in "+timeStyle.Render(FormatCountdown(o.timeRemaining)),
		"Press any key or move the mouse to stay signed in")
}

func (o SessionTimeoutOverlay) render(accent lipgloss.AdaptiveColor, title, message, hint string) string {
	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}
	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(accent).Bold(true).Render(title),
		"",
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Width(maxWidth-8).
			Align(lipgloss.Center).Render(message),
		"",
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true).Render(hint),
	)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(accent).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim))
}

// FormatCountdown formats a duration as M:SS.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		return "0:00"
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
