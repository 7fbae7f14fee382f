// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the full-screen askmydocs interface.
//
// The model has three routes: login, sign up and the dashboard. Every
// navigation goes through router.Guard, so the dashboard is only reachable
// with a stored token. While the dashboard is shown an inactivity monitor is
// mounted: every key press, mouse click, mouse motion and wheel scroll resets
// it, and after 15 minutes without any the session is signed out and the
// login view returns.
//
// # Usage
//
//	m := app.New(app.Deps{Controller: ctrl, Guard: guard, Config: cfg})
//	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
//	m.Attach(p)
//	_, err := p.Run()
//	m.Close()
package app
