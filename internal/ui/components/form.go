// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-tui/internal/ui/styles"
)

// =============================================================================
// FORM - Fields plus a submit button with keyboard focus cycling
// =============================================================================

// FormSubmitMsg is emitted when a form is submitted.
type FormSubmitMsg struct {
	ID     string
	Values map[string]string
}

// FormKeys are the bindings a Form reacts to.
type FormKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

// DefaultFormKeys returns tab/shift+tab navigation with enter to submit.
func DefaultFormKeys() FormKeys {
	return FormKeys{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	}
}

// Form is a vertical list of fields followed by a button. Focus index
// len(fields) is the button.
type Form struct {
	ID     string
	Title  string
	Button string

	fields  []*Field
	focus   int
	busy    bool
	errText string
	notice  string
	width   int
	keys    FormKeys
	theme   *styles.Theme
}

// NewForm creates a form with the given fields. The first field is focused.
func NewForm(theme *styles.Theme, id, title, button string, fields ...*Field) *Form {
	f := &Form{
		ID:     id,
		Title:  title,
		Button: button,
		fields: fields,
		keys:   DefaultFormKeys(),
		theme:  theme,
	}
	f.SetWidth(44)
	return f
}

// Fields returns the form's fields in order.
func (f *Form) Fields() []*Field { return f.fields }

// Field returns the field called name, or nil.
func (f *Form) Field(name string) *Field {
	for _, fl := range f.fields {
		if fl.Name == name {
			return fl
		}
	}
	return nil
}

// Values returns the current field values keyed by name.
func (f *Form) Values() map[string]string {
	v := make(map[string]string, len(f.fields))
	for _, fl := range f.fields {
		v[fl.Name] = fl.Value()
	}
	return v
}

// SetWidth sets the width of every field.
func (f *Form) SetWidth(width int) {
	f.width = width
	for _, fl := range f.fields {
		fl.SetWidth(width)
	}
}

// Focus focuses field i, or the button when i == len(fields).
func (f *Form) Focus(i int) tea.Cmd {
	if i < 0 {
		i = len(f.fields)
	}
	if i > len(f.fields) {
		i = 0
	}
	f.focus = i
	var cmd tea.Cmd
	for j, fl := range f.fields {
		if j == i {
			cmd = fl.Focus()
		} else {
			fl.Blur()
		}
	}
	return cmd
}

// Focused returns the focus index.
func (f *Form) Focused() int { return f.focus }

// Blur removes focus from every field.
func (f *Form) Blur() {
	for _, fl := range f.fields {
		fl.Blur()
	}
}

// SetBusy marks a request in flight; submits are ignored while busy.
func (f *Form) SetBusy(busy bool) { f.busy = busy }

// Busy reports whether a request is in flight.
func (f *Form) Busy() bool { return f.busy }

// SetError shows an inline error and clears any notice.
func (f *Form) SetError(msg string) {
	f.errText = msg
	if msg != "" {
		f.notice = ""
	}
}

// Error returns the inline error.
func (f *Form) Error() string { return f.errText }

// SetNotice shows an inline success message and clears any error.
func (f *Form) SetNotice(msg string) {
	f.notice = msg
	if msg != "" {
		f.errText = ""
	}
}

// Notice returns the inline success message.
func (f *Form) Notice() string { return f.notice }

// Reset clears every field and message and focuses the first field.
func (f *Form) Reset() tea.Cmd {
	for _, fl := range f.fields {
		fl.Reset()
	}
	f.errText, f.notice = "", ""
	return f.Focus(0)
}

// Update handles navigation and submission, and forwards other messages to
// the focused field.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, f.keys.Next):
			return f.Focus(f.focus + 1)
		case key.Matches(k, f.keys.Prev):
			return f.Focus(f.focus - 1)
		case key.Matches(k, f.keys.Submit):
			if f.focus < len(f.fields)-1 {
				return f.Focus(f.focus + 1)
			}
			return f.submit()
		}
	}
	if f.focus < len(f.fields) {
		return f.fields[f.focus].Update(msg)
	}
	return nil
}

func (f *Form) submit() tea.Cmd {
	if f.busy {
		return nil
	}
	id, values := f.ID, f.Values()
	return func() tea.Msg {
		return FormSubmitMsg{ID: id, Values: values}
	}
}

// View renders the form body without a card border.
func (f *Form) View() string {
	parts := make([]string, 0, len(f.fields)+5)
	if f.Title != "" {
		parts = append(parts, f.theme.FormTitle.Render(f.Title), "")
	}
	for _, fl := range f.fields {
		parts = append(parts, fl.View())
	}
	parts = append(parts, "")

	label := f.Button
	if f.busy {
		label += "..."
	}
	btn := f.theme.Button
	if f.focus == len(f.fields) {
		btn = f.theme.ButtonActive
	}
	parts = append(parts, btn.Render(label))

	if f.errText != "" {
		parts = append(parts, "", f.theme.FormError.Render(f.errText))
	} else if f.notice != "" {
		parts = append(parts, "", f.theme.Notice.Render(f.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
