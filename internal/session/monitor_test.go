// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	clock   *ManualClock
	bus     *Bus
	mon     *Monitor
	expired int
	warned  []time.Duration
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{clock: NewManualClock(epoch), bus: NewBus()}
	cfg := DefaultConfig()
	cfg.Clock = h.clock
	cfg.OnExpire = func() { h.expired++ }
	if mutate != nil {
		mutate(&cfg)
	}
	h.mon = NewMonitor(cfg)
	return h
}

func TestMonitor_ExpiresAfterIdleLimit(t *testing.T) {
	h := newHarness(t, nil)
	dispose := h.mon.Mount(h.bus)
	defer dispose()

	h.clock.Advance(IdleLimit - time.Second)
	assert.Equal(t, 0, h.expired)

	h.clock.Advance(time.Second)
	assert.Equal(t, 1, h.expired)

	h.clock.Advance(time.Hour)
	assert.Equal(t, 1, h.expired, "expiry fires exactly once")
}

func TestMonitor_ActivityResetsFullLimit(t *testing.T) {
	h := newHarness(t, nil)
	dispose := h.mon.Mount(h.bus)
	defer dispose()

	for i, kind := range []EventKind{KeyPress, PointerMove, Scroll, PointerDown, TouchStart, KeyPress} {
		h.clock.Advance(14*time.Minute + 59*time.Second)
		h.bus.Publish(kind)
		require.Equal(t, 0, h.expired, "event %d (%s)", i, kind)
	}

	assert.Equal(t, IdleLimit, h.mon.Remaining())
	h.clock.Advance(IdleLimit)
	assert.Equal(t, 1, h.expired)
}

func TestMonitor_SingleOutstandingTimer(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.WarningBefore = -1 })
	dispose := h.mon.Mount(h.bus)
	defer dispose()

	for i := 0; i < 20; i++ {
		h.bus.Publish(PointerMove)
	}
	assert.Equal(t, 1, h.clock.Pending())
	assert.Equal(t, 20, h.mon.Status().Resets)
}

func TestMonitor_DisposeStopsTimerAndDetaches(t *testing.T) {
	h := newHarness(t, nil)
	dispose := h.mon.Mount(h.bus)
	assert.Equal(t, len(ActivityEvents), h.bus.ListenerCount())

	dispose()
	assert.Equal(t, 0, h.bus.ListenerCount())
	assert.Equal(t, 0, h.clock.Pending())
	assert.False(t, h.mon.Status().Mounted)

	h.bus.Publish(KeyPress)
	h.clock.Advance(2 * IdleLimit)
	assert.Equal(t, 0, h.expired, "no expiry after dispose")

	assert.NotPanics(t, dispose, "dispose is idempotent")
}

func TestMonitor_ExpiryDetachesListeners(t *testing.T) {
	h := newHarness(t, nil)
	dispose := h.mon.Mount(h.bus)
	defer dispose()

	h.clock.Advance(IdleLimit)
	require.Equal(t, 1, h.expired)
	assert.Equal(t, 0, h.bus.ListenerCount())

	h.bus.Publish(KeyPress)
	h.clock.Advance(IdleLimit)
	assert.Equal(t, 1, h.expired)
	assert.True(t, h.mon.Status().Expired)
	assert.Equal(t, time.Duration(0), h.mon.Remaining())
}

func TestMonitor_RemountReplacesPrevious(t *testing.T) {
	h := newHarness(t, nil)
	first := h.mon.Mount(h.bus)

	other := NewBus()
	second := h.mon.Mount(other)
	assert.Equal(t, 0, h.bus.ListenerCount(), "old source detached")
	assert.Equal(t, len(ActivityEvents), other.ListenerCount())

	first()
	assert.True(t, h.mon.Status().Mounted, "stale dispose leaves the new mount alone")

	second()
	assert.Equal(t, 0, other.ListenerCount())
}

func TestMonitor_RemountAfterExpiry(t *testing.T) {
	h := newHarness(t, nil)
	dispose := h.mon.Mount(h.bus)
	h.clock.Advance(IdleLimit)
	require.Equal(t, 1, h.expired)
	dispose()

	dispose = h.mon.Mount(h.bus)
	defer dispose()
	assert.False(t, h.mon.Status().Expired)
	h.clock.Advance(IdleLimit)
	assert.Equal(t, 2, h.expired)
}

func TestMonitor_Warning(t *testing.T) {
	h := newHarness(t, nil)
	h.mon.onWarning = func(d time.Duration) { h.warned = append(h.warned, d) }
	dispose := h.mon.Mount(h.bus)
	defer dispose()

	h.clock.Advance(IdleLimit - DefaultWarningBefore - time.Second)
	assert.Empty(t, h.warned)
	assert.False(t, h.mon.InWarningWindow())

	h.clock.Advance(time.Second)
	require.Len(t, h.warned, 1)
	assert.Equal(t, DefaultWarningBefore, h.warned[0])
	assert.True(t, h.mon.InWarningWindow())

	h.bus.Publish(KeyPress)
	assert.False(t, h.mon.InWarningWindow())
	h.clock.Advance(IdleLimit)
	assert.Len(t, h.warned, 2)
	assert.Equal(t, 1, h.expired)
}

func TestMonitor_ConfigDefaults(t *testing.T) {
	m := NewMonitor(Config{})
	assert.Equal(t, IdleLimit, m.IdleLimit())
	assert.Equal(t, DefaultWarningBefore, m.warningBefore)

	m = NewMonitor(Config{IdleLimit: time.Minute, WarningBefore: 5 * time.Minute})
	assert.Less(t, m.warningBefore, time.Duration(0), "warning longer than limit is disabled")
}

func TestMonitor_RealClock(t *testing.T) {
	fired := make(chan struct{}, 2)
	m := NewMonitor(Config{
		IdleLimit:     20 * time.Millisecond,
		WarningBefore: -1,
		OnExpire:      func() { fired <- struct{}{} },
	})
	dispose := m.Mount(NewBus())
	defer dispose()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never expired")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, fired, 0)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{45 * time.Second, "45s"},
		{15 * time.Minute, "15m"},
		{14*time.Minute + 5*time.Second, "14m 5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}
