// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// ExpiredMsg signals that the idle limit passed and the user was logged out.
type ExpiredMsg struct{}

// WarningMsg signals that the session is about to expire.
type WarningMsg struct {
	Remaining time.Duration
}

// TickMsg drives the countdown shown while the warning is visible.
type TickMsg struct {
	Time time.Time
}

// TickCmd schedules one TickMsg after a second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// NotifyProgram returns Config callbacks that forward expiry and warnings
// to a running program as ExpiredMsg and WarningMsg.
func NotifyProgram(p Sender, onExpire func()) (expire func(), warning func(time.Duration)) {
	expire = func() {
		if onExpire != nil {
			onExpire()
		}
		p.Send(ExpiredMsg{})
	}
	warning = func(remaining time.Duration) {
		p.Send(WarningMsg{Remaining: remaining})
	}
	return expire, warning
}

// EventForMsg maps terminal input to an activity event. Mouse button
// releases and non-input messages report false. Terminals have no touch
// input, so TouchStart never comes from here.
func EventForMsg(msg tea.Msg) (EventKind, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return KeyPress, true
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
			return PointerDown, true
		case tea.MouseMotion:
			return PointerMove, true
		case tea.MouseWheelUp, tea.MouseWheelDown:
			return Scroll, true
		}
	}
	return 0, false
}
