// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-tui/internal/ui/styles"
	"github.com/askmydocs/askmydocs-tui/internal/util"
)

// =============================================================================
// HEADER - Title bar with the signed-in user
// =============================================================================

// Header is the one-line bar across the top of every view.
type Header struct {
	Title    string
	UserName string
	Email    string
	Location string // route label, e.g. "Dashboard"
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header titled "AskMyDocs".
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: "AskMyDocs", Width: 80, theme: theme}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) { h.Width = width }

// SetUser shows name and email on the right; empty values hide them.
func (h *Header) SetUser(name, email string) {
	h.UserName = name
	h.Email = email
}

// SetLocation sets the route label.
func (h *Header) SetLocation(loc string) { h.Location = loc }

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	left := h.theme.HeaderBrand.Render(h.Title)
	if h.Location != "" {
		left += h.theme.HeaderUser.Render(" / " + h.Location)
	}

	var right string
	switch {
	case h.UserName != "" && h.Email != "":
		right = h.UserName + " <" + h.Email + ">"
	case h.Email != "":
		right = h.Email
	case h.UserName != "":
		right = h.UserName
	}

	// Padding(0,1) on the header takes two columns.
	inner := width - 2
	gap := inner - lipgloss.Width(left) - util.Width(right)
	if right != "" && gap < 1 {
		right = util.Truncate(right, inner-lipgloss.Width(left)-1)
		gap = inner - lipgloss.Width(left) - util.Width(right)
	}
	if gap < 0 {
		gap = 0
	}

	line := left + strings.Repeat(" ", gap) + h.theme.HeaderUser.Render(right)
	return h.theme.Header.Width(width).Render(line)
}
