// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and Lip Gloss styles shared by the TUI
views and the CLI output.

All colors are lipgloss.AdaptiveColor values so they follow the terminal's
light or dark background.

# Color System (colors.go)

  - Cyan: brand, focused fields, links
  - Purple: headers and the active tab
  - Emerald: success notices
  - Amber: warnings and the session timeout countdown
  - Rose: errors

# Theme (theme.go)

Theme groups the styles for the auth forms, the dashboard panels and the
status line. Views take a *Theme so tests can render without a terminal.
*/
package styles
