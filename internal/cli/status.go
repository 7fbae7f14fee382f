// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend, storage and session overview.
//
// Examples:
//
//	askmydocs status
//	askmydocs status --json
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/askmydocs/askmydocs-tui/internal/api"
)

// tokenInfo is what can be read from a session token without the signing
// key. The backend remains the authority on validity.
type tokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past.
func (t tokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// inspectToken decodes the claims of a JWT without verifying it.
func inspectToken(token string) (tokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenInfo{}, err
	}
	var info tokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// HandleStatus prints configuration and session details. It only fails on
// output errors; an unreachable backend is reported, not returned.
func HandleStatus(env *Env, args Args) error {
	data := StatusData{
		Version: Version,
		Backend: StatusBackendInfo{URL: env.Client.BaseURL()},
		Storage: StatusStorageInfo{Backend: env.Config.Storage.Backend, Path: env.Config.Storage.Path},
	}

	if token, ok := env.Store.Get(); ok {
		data.Session.TokenPresent = true
		if info, err := inspectToken(token); err == nil {
			data.Session.Subject = info.Subject
			data.Session.Expired = info.Expired(time.Now())
			if !info.ExpiresAt.IsZero() {
				data.Session.ExpiresAt = info.ExpiresAt.Format(time.RFC3339)
			}
		}

		user, err := env.Ctrl.CurrentUser(context.Background())
		switch {
		case err == nil:
			data.Backend.Reachable = true
			data.Session.Valid = true
			data.Session.Email = user.Email
		case errors.Is(err, api.ErrNetwork):
			data.Backend.Error = err.Error()
		default:
			data.Backend.Reachable = true
			data.Backend.Error = err.Error()
		}
	}

	return env.result(args, "status", data, func(w io.Writer) {
		printStatus(w, data)
	})
}

func printStatus(w io.Writer, data StatusData) {
	fmt.Fprintln(w, TitleStyle.Render("askmydocs "+data.Version))
	fmt.Fprintln(w, RenderSeparator())
	fmt.Fprintln(w, RenderField("Backend", data.Backend.URL))
	storage := data.Storage.Backend
	if data.Storage.Path != "" {
		storage += " (" + data.Storage.Path + ")"
	}
	fmt.Fprintln(w, RenderField("Token store", storage))

	if !data.Session.TokenPresent {
		fmt.Fprintln(w, RenderField("Session", "signed out"))
		return
	}
	state := "ok"
	switch {
	case data.Session.Expired:
		state = "expired"
	case !data.Session.Valid:
		state = "fail"
	}
	fmt.Fprintln(w, RenderField("Session", RenderStatus(state)+" "+data.Session.Email))
	if data.Session.Subject != "" {
		fmt.Fprintln(w, RenderField("Subject", data.Session.Subject))
	}
	if data.Session.ExpiresAt != "" {
		fmt.Fprintln(w, RenderField("Expires", data.Session.ExpiresAt))
	}
	if data.Backend.Error != "" {
		fmt.Fprintln(w, RenderField("Backend error", DimStyle.Render(data.Backend.Error)))
	}
}
