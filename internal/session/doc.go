// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the inactivity monitor that logs a user out
// after a fixed idle period.
//
// While the session view is mounted, a Monitor holds exactly one deadline
// timer. Every qualifying interaction (pointer-down, pointer-move, key-press,
// scroll, touch-start) stops that timer and arms a new one for the full idle
// limit, with no debounce. If the deadline passes with no interaction the
// expiry callback runs once. Disposing the mount stops the timer and removes
// every listener; nothing fires afterwards.
//
// # Key Types
//
//   - Monitor: the idle watchdog
//   - EventSource / Bus: subscription point for interaction events
//   - Clock / ManualClock: time source; ManualClock drives virtual time in tests
//   - ExpiredMsg, WarningMsg, TickMsg: Bubble Tea messages for the TUI
//
// # Usage
//
//	bus := session.NewBus()
//	mon := session.NewMonitor(session.Config{
//	    OnExpire: func() { controller.Logout() },
//	})
//	dispose := mon.Mount(bus)
//	defer dispose()
//
//	bus.Publish(session.KeyPress) // resets the deadline
package session
