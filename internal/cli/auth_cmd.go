// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Account and session commands.
//
// Examples:
//
//	askmydocs login --email ada@example.com     Prompts for the password
//	askmydocs register                          Prompts for every field
//	askmydocs whoami --json
//	askmydocs passwd
//	askmydocs logout
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/askmydocs/askmydocs-tui/internal/auth"
)

// HandleLogin signs in and stores the session token.
func HandleLogin(env *Env, args Args) error {
	p := NewArgParser(args.Rest)
	email, err := valueOrPrompt(p, env.Prompt, "Email", false, "email", "e")
	if err != nil {
		return err
	}
	password, err := valueOrPrompt(p, env.Prompt, "Password", true, "password", "p")
	if err != nil {
		return err
	}

	if err := env.Ctrl.Login(context.Background(), email, password); err != nil {
		return err
	}
	return env.sessionResult(args, "login", email, "Signed in as %s\n")
}

// HandleRegister creates an account and signs in.
func HandleRegister(env *Env, args Args) error {
	p := NewArgParser(args.Rest)
	var prof auth.Profile
	var err error
	if prof.Name, err = valueOrPrompt(p, env.Prompt, "Name", false, "name", "n"); err != nil {
		return err
	}
	if prof.Email, err = valueOrPrompt(p, env.Prompt, "Email", false, "email", "e"); err != nil {
		return err
	}
	if prof.Password, err = valueOrPrompt(p, env.Prompt, "Password", true, "password", "p"); err != nil {
		return err
	}
	if prof.Confirm, err = valueOrPrompt(p, env.Prompt, "Confirm password", true, "confirm"); err != nil {
		return err
	}

	if err := env.Ctrl.Register(context.Background(), prof); err != nil {
		return err
	}
	return env.sessionResult(args, "register", prof.Email, "Account created. Signed in as %s\n")
}

func (e *Env) sessionResult(args Args, command, email, format string) error {
	data := SessionData{Email: email, LoggedIn: true, Storage: e.Config.Storage.Backend}
	if token, ok := e.Store.Get(); ok {
		if info, err := inspectToken(token); err == nil && !info.ExpiresAt.IsZero() {
			data.ExpiresAt = info.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
		}
	}
	return e.result(args, command, data, func(w io.Writer) {
		if !args.Quiet {
			fmt.Fprintf(w, "%s "+format, SuccessStyle.Render("[OK]"), email)
		}
	})
}

// HandleLogout forgets the stored session. It succeeds when signed out.
func HandleLogout(env *Env, args Args) error {
	if err := env.Ctrl.Logout(); err != nil {
		return NewCommandError("logout", "clear", "token store", err)
	}
	data := SessionData{LoggedIn: false, Storage: env.Config.Storage.Backend}
	return env.result(args, "logout", data, func(w io.Writer) {
		if !args.Quiet {
			fmt.Fprintf(w, "%s Signed out\n", SuccessStyle.Render("[OK]"))
		}
	})
}

// HandleWhoami shows the signed-in account.
func HandleWhoami(env *Env, args Args) error {
	user, err := env.Ctrl.CurrentUser(context.Background())
	if err != nil {
		return err
	}
	data := UserData{ID: user.ID, Name: user.Name, Email: user.Email}
	return env.result(args, "whoami", data, func(w io.Writer) {
		if args.Quiet {
			fmt.Fprintln(w, user.Email)
			return
		}
		fmt.Fprintln(w, RenderField("Name", user.Name))
		fmt.Fprintln(w, RenderField("Email", user.Email))
	})
}

// HandlePasswd changes the password of the signed-in account.
func HandlePasswd(env *Env, args Args) error {
	p := NewArgParser(args.Rest)
	var change auth.PasswordChange
	var err error
	if change.Current, err = valueOrPrompt(p, env.Prompt, "Current password", true, "current"); err != nil {
		return err
	}
	if change.New, err = valueOrPrompt(p, env.Prompt, "New password", true, "new"); err != nil {
		return err
	}
	if change.Confirm, err = valueOrPrompt(p, env.Prompt, "Confirm new password", true, "confirm"); err != nil {
		return err
	}

	msg, err := env.Ctrl.ChangePassword(context.Background(), change)
	if err != nil {
		return err
	}
	return env.result(args, "passwd", MessageData{Message: msg}, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK]"), msg)
	})
}
