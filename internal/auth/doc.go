// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth is the session controller: it validates form input locally,
// drives the API client, keeps the token store and the client's
// Authorization header in step, and decides where to navigate next.
//
// Every failure leaving this package is an *Error whose Message is ready to
// show to the user. Validation failures never reach the network.
//
// # Usage
//
//	ctrl := auth.New(client, store, navigator)
//	if err := ctrl.Login(ctx, "a@b.com", "secret1"); err != nil {
//	    fmt.Println(auth.Message(err))
//	}
package auth
