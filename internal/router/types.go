// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

// Path is a navigable location.
type Path string

const (
	Root      Path = "/"
	Login     Path = "/login"
	Register  Path = "/register"
	Dashboard Path = "/dashboard"
)

// Route describes one entry of the route table.
type Route struct {
	Path Path
	// Protected routes need a stored token.
	Protected bool
	// Forward, when set, sends every visit on to another path.
	Forward Path
	Title   string
}

// Routes is the complete route table.
var Routes = []Route{
	{Path: Root, Forward: Dashboard},
	{Path: Login, Title: "Login"},
	{Path: Register, Title: "Sign Up"},
	{Path: Dashboard, Protected: true, Title: "Dashboard"},
}

// Lookup returns the route for p.
func Lookup(p Path) (Route, bool) {
	for _, r := range Routes {
		if r.Path == p {
			return r, true
		}
	}
	return Route{}, false
}

// State is the authentication state observed at one navigation.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Authenticated:
		return "Authenticated"
	default:
		return "Unauthenticated"
	}
}

// Decision is the result of resolving a navigation.
type Decision struct {
	// Requested is the normalized path that was asked for.
	Requested Path
	// Path is where the navigation lands.
	Path Path
	// Redirected is true when a protected path was refused.
	Redirected bool
	State      State
}
