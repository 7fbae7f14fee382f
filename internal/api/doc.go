// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the AskMyDocs backend.
//
// A Client owns one default header map. SetAuthToken installs or removes the
// bearer header for every later call made through that client; nothing here
// is process-global. Each operation is a single request and response with no
// retries. The client does no business validation.
//
// # Errors
//
//   - *APIError: the backend answered with a non-2xx status; Detail carries
//     the backend's human-readable reason when one was sent
//   - *NetworkError: no response arrived (refused, reset, timeout)
//   - ErrNotAuthenticated: a protected call was attempted with no token set,
//     and nothing was sent
//
// # Usage
//
//	client := api.NewClient(cfg.API.BaseURL).WithTimeout(cfg.API.Timeout())
//	tok, err := client.Login(ctx, api.Credentials{Email: email, Password: pw})
//	if err != nil {
//	    return err
//	}
//	client.SetAuthToken(tok.AccessToken)
//	me, err := client.CurrentUser(ctx)
package api
