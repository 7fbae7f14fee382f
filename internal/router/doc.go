// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides which view a navigation request may render.
//
// There are four paths: "/" (always forwards to the dashboard), "/login",
// "/register" and the protected "/dashboard". A Guard asks its token source
// on every call whether a token is present; it keeps no state between
// navigations and performs no expiry or signature checks.
//
// # Key Types
//
//   - Path: a navigable location
//   - Guard: resolves a requested Path to the Path that may render
//   - Decision: the outcome, including whether a redirect happened
//   - State: Authenticated or Unauthenticated, derived per call
//
// # Usage
//
//	guard := router.NewGuard(store)
//	d := guard.Resolve(router.Dashboard)
//	if d.Redirected {
//	    // show d.Path (the login view) instead
//	}
package router
