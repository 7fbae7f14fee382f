// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// EventKind is a class of user interaction.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	KeyPress
	Scroll
	TouchStart
)

// ActivityEvents is the fixed set of interactions that count as activity.
var ActivityEvents = []EventKind{PointerDown, PointerMove, KeyPress, Scroll, TouchStart}

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case KeyPress:
		return "key-press"
	case Scroll:
		return "scroll"
	case TouchStart:
		return "touch-start"
	default:
		return "unknown"
	}
}

// Listener receives one event.
type Listener func(EventKind)

// EventSource lets a Monitor attach listeners. The returned function
// detaches the listener and is safe to call more than once.
type EventSource interface {
	Subscribe(kind EventKind, fn Listener) (unsubscribe func())
}

// Bus is an in-process EventSource backed by an EventBus topic per event
// kind. The TUI publishes terminal input to it.
//
// Each kind has a single dispatcher on the underlying bus, registered once in
// NewBus and never removed. EventBus matches handlers by code pointer and
// holds its lock while delivering, so per-listener handlers could neither be
// told apart on Unsubscribe nor detached from inside a delivery.
type Bus struct {
	bus evbus.Bus

	mu        sync.Mutex
	nextID    int
	listeners map[EventKind]map[int]Listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	b := &Bus{
		bus:       evbus.New(),
		listeners: make(map[EventKind]map[int]Listener),
	}
	for _, kind := range ActivityEvents {
		if err := b.bus.Subscribe(kind.String(), b.dispatch); err != nil {
			panic("session: subscribe " + kind.String() + ": " + err.Error())
		}
	}
	return b
}

// Subscribe implements EventSource.
func (b *Bus) Subscribe(kind EventKind, fn Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.listeners[kind] == nil {
		b.listeners[kind] = make(map[int]Listener)
	}
	b.listeners[kind][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners[kind], id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers kind to every current listener. Listeners run outside
// the listener lock, so they may subscribe or unsubscribe.
func (b *Bus) Publish(kind EventKind) {
	b.bus.Publish(kind.String(), kind)
}

func (b *Bus) dispatch(kind EventKind) {
	b.mu.Lock()
	fns := make([]Listener, 0, len(b.listeners[kind]))
	for _, fn := range b.listeners[kind] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(kind)
	}
}

// ListenerCount returns the number of attached listeners across all kinds.
func (b *Bus) ListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.listeners {
		n += len(m)
	}
	return n
}
