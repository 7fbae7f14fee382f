// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"log/slog"
	"strings"

	"github.com/askmydocs/askmydocs-tui/internal/logging"
)

// TokenSource reports whether a session token is stored.
// *tokenstore.Store satisfies it.
type TokenSource interface {
	Get() (string, bool)
}

// Guard resolves navigation requests against the route table.
type Guard struct {
	tokens TokenSource
	logger *slog.Logger
}

// NewGuard creates a guard reading tokens from src.
func NewGuard(src TokenSource) *Guard {
	return &Guard{tokens: src, logger: logging.Discard()}
}

// WithLogger sets the logger used for redirect events.
func (g *Guard) WithLogger(l *slog.Logger) *Guard {
	g.logger = logging.OrDiscard(l)
	return g
}

// State queries the token source now.
func (g *Guard) State() State {
	if _, ok := g.tokens.Get(); ok {
		return Authenticated
	}
	return Unauthenticated
}

// Resolve returns where a request for p lands. Forwarding routes are
// followed first, then a protected target without a token is redirected
// to Login. Unknown paths are treated as Root.
func (g *Guard) Resolve(p Path) Decision {
	requested := Normalize(p)
	target := requested

	route, ok := Lookup(target)
	if !ok {
		target = Root
		route, _ = Lookup(Root)
	}
	// The table has no forwarding chains, but guard against one anyway.
	for hops := 0; route.Forward != "" && hops < len(Routes); hops++ {
		target = route.Forward
		route, _ = Lookup(target)
	}

	state := g.State()
	d := Decision{Requested: requested, Path: target, State: state}
	if route.Protected && state != Authenticated {
		d.Path = Login
		d.Redirected = true
		g.logger.Info("navigation redirected", "requested", string(requested), "to", string(Login))
	}
	return d
}

// Allowed reports whether p would render without a redirect.
func (g *Guard) Allowed(p Path) bool {
	return !g.Resolve(p).Redirected
}

// Normalize trims whitespace and trailing slashes and ensures a leading slash.
func Normalize(p Path) Path {
	s := strings.TrimSpace(string(p))
	s = strings.TrimRight(s, "/")
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return Path(strings.ToLower(s))
}
