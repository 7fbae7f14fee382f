// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/askmydocs/askmydocs-tui/internal/api"
	"github.com/askmydocs/askmydocs-tui/internal/auth"
)

// authResultMsg reports a finished login or registration.
type authResultMsg struct {
	form auth.Form
	err  error
}

// userLoadedMsg carries the signed-in account.
type userLoadedMsg struct {
	user *api.User
	err  error
}

// passwordResultMsg reports a password change.
type passwordResultMsg struct {
	message string
	err     error
}

// uploadResultMsg reports a file upload.
type uploadResultMsg struct {
	upload *auth.Upload
	err    error
}

// textResultMsg reports a text submission.
type textResultMsg struct {
	message string
	err     error
}

// answerMsg carries the answer to a question.
type answerMsg struct {
	question string
	reply    *auth.Reply
	err      error
}

// storeChangedMsg is sent when another process signs in or out.
type storeChangedMsg struct{}
