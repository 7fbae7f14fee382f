// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for every view.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style

	// ==========================================================================
	// AUTH FORMS
	// ==========================================================================

	FormCard     lipgloss.Style
	FormTitle    lipgloss.Style
	FormSubtitle lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldFocused lipgloss.Style
	FieldBlurred lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	FormError    lipgloss.Style
	Link         lipgloss.Style

	// ==========================================================================
	// DASHBOARD
	// ==========================================================================

	Panel        lipgloss.Style
	PanelTitle   lipgloss.Style
	Tab          lipgloss.Style
	TabActive    lipgloss.Style
	Radio        lipgloss.Style
	RadioActive  lipgloss.Style
	Answer       lipgloss.Style
	AnswerHeader lipgloss.Style
	Source       lipgloss.Style
	Notice       lipgloss.Style
	NoticeError  lipgloss.Style
	Modal        lipgloss.Style

	// ==========================================================================
	// STATUS LINE
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusKey     lipgloss.Style
	StatusWarning lipgloss.Style
	Hint          lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.HeaderUser = lipgloss.NewStyle().Foreground(TextSecondary)

	t.FormCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)
	t.FormTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.FormSubtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.FieldLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FieldFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(FocusRing).
		Padding(0, 1)
	t.FieldBlurred = t.FieldFocused.Copy().BorderForeground(OverlayDim)
	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2)
	t.ButtonActive = t.Button.Copy().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true)
	t.FormError = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Link = lipgloss.NewStyle().Foreground(Cyan).Underline(true)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.Tab = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)
	t.TabActive = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		Underline(true).
		Padding(0, 1)
	t.Radio = lipgloss.NewStyle().Foreground(TextSecondary)
	t.RadioActive = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Answer = lipgloss.NewStyle().
		Background(AnswerBg).
		Padding(0, 1)
	t.AnswerHeader = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Source = lipgloss.NewStyle().Foreground(TextMuted)
	t.Notice = lipgloss.NewStyle().Foreground(Emerald)
	t.NoticeError = lipgloss.NewStyle().Foreground(Rose)
	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Cyan).
		Padding(1, 3)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.StatusWarning = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode is the responsive layout bucket for the current width.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the layout for the current width. Dashboard tabs
// drop their function-key prefix in LayoutNarrow.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}
