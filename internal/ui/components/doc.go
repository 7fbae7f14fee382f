// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces of the askmydocs TUI.

# Input

Field (input.go) - Labeled single-line input; secret fields mask the value.
Form (form.go) - Fields plus a submit button with tab navigation. Emits
FormSubmitMsg on enter from the last field or the button.

# Display

Header (header.go) - Title bar with the route and the signed-in user.
StatusBar (statusbar.go) - Activity state, idle countdown and key hints.
ToastManager (toast.go) - Auto-dismissing notices.
SessionTimeoutOverlay (session_timeout_overlay.go) - Idle warning and the
signed-out notice.

All components take a *styles.Theme:

	theme := styles.NewTheme()
	form := components.NewForm(theme, "login", "Sign in", "Login",
		components.NewField(theme, "email", "Email", "you@example.com", false),
		components.NewField(theme, "password", "Password", "", true),
	)
	cmd := form.Focus(0)
*/
package components
