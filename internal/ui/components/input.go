// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-tui/internal/ui/styles"
)

// =============================================================================
// FIELD - Labeled single-line input
// =============================================================================

// Field is a labeled text input used by the auth and dashboard forms.
type Field struct {
	Name  string
	Label string

	input textinput.Model
	width int
	theme *styles.Theme
}

// NewField creates a field. secret masks the value as it is typed.
func NewField(theme *styles.Theme, name, label, placeholder string, secret bool) *Field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}

	f := &Field{Name: name, Label: label, input: ti, theme: theme}
	f.SetWidth(40)
	return f
}

// Focus focuses the field.
func (f *Field) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes focus from the field.
func (f *Field) Blur() {
	f.input.Blur()
}

// Focused returns whether the field has focus.
func (f *Field) Focused() bool {
	return f.input.Focused()
}

// SetWidth sets the outer width including the border.
func (f *Field) SetWidth(width int) {
	f.width = width
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	f.input.Width = inner
}

// Value returns the raw value.
func (f *Field) Value() string {
	return f.input.Value()
}

// SetValue replaces the value.
func (f *Field) SetValue(v string) {
	f.input.SetValue(v)
}

// Reset clears the value.
func (f *Field) Reset() {
	f.input.Reset()
}

// Update forwards msg to the input.
func (f *Field) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// View renders the label above a bordered input.
func (f *Field) View() string {
	box := f.theme.FieldBlurred
	if f.input.Focused() {
		box = f.theme.FieldFocused
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		f.theme.FieldLabel.Render(f.Label),
		box.Width(f.width-2).Render(f.input.View()),
	)
}
