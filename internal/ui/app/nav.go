// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askmydocs-tui/internal/router"
	"github.com/askmydocs/askmydocs-tui/internal/session"
)

// pendingNav is the controller's Navigator. The controller runs on command
// goroutines and timer callbacks, so it records the last requested path and
// the model applies it on its own goroutine when the result arrives.
type pendingNav struct {
	mu   sync.Mutex
	path router.Path
	set  bool
}

func (n *pendingNav) Navigate(p router.Path) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path, n.set = p, true
}

// take returns and clears the pending path.
func (n *pendingNav) take() (router.Path, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.path, n.set
	n.path, n.set = "", false
	return p, ok
}

// lazySender forwards to the program once it is attached. Messages sent
// before that are dropped.
type lazySender struct {
	mu sync.RWMutex
	p  session.Sender
}

func (s *lazySender) attach(p session.Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

// Send must not be called from Update; tea.Program.Send blocks until the
// event loop receives.
func (s *lazySender) Send(msg tea.Msg) {
	s.mu.RLock()
	p := s.p
	s.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}
