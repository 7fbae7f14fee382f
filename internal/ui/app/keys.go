// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the global and dashboard bindings. Form navigation keys
// live in components.FormKeys.
type KeyMap struct {
	Quit       key.Binding
	SwitchAuth key.Binding
	Back       key.Binding
	Logout     key.Binding
	AskTab     key.Binding
	UploadTab  key.Binding
	TextTab    key.Binding
	AccountTab key.Binding
	NextTab    key.Binding
	Model      key.Binding
	SaveText   key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		SwitchAuth: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "sign up / sign in"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
		AskTab: key.NewBinding(
			key.WithKeys("f1", "alt+1"),
			key.WithHelp("F1", "ask"),
		),
		UploadTab: key.NewBinding(
			key.WithKeys("f2", "alt+2"),
			key.WithHelp("F2", "upload"),
		),
		TextTab: key.NewBinding(
			key.WithKeys("f3", "alt+3"),
			key.WithHelp("F3", "add text"),
		),
		AccountTab: key.NewBinding(
			key.WithKeys("f4", "alt+4"),
			key.WithHelp("F4", "account"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next tab"),
		),
		Model: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "switch model"),
		),
		SaveText: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "add text"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll answer"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll answer"),
		),
	}
}
