// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/askmydocs/askmydocs-tui/internal/logging"
)

// IdleLimit is how long a mounted session view may sit without interaction.
const IdleLimit = 15 * time.Minute

// DefaultWarningBefore is how long before expiry OnWarning runs.
const DefaultWarningBefore = 2 * time.Minute

// =============================================================================
// MONITOR
// =============================================================================

// Config holds configuration for a Monitor.
type Config struct {
	// IdleLimit defaults to IdleLimit.
	IdleLimit time.Duration

	// WarningBefore is how long before expiry to call OnWarning.
	// Zero uses DefaultWarningBefore; negative disables the warning.
	WarningBefore time.Duration

	// OnExpire runs once when the deadline passes with no interaction.
	OnExpire func()

	// OnWarning runs once per deadline, WarningBefore ahead of it.
	OnWarning func(remaining time.Duration)

	Clock  Clock
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the standard limits and no callbacks.
func DefaultConfig() Config {
	return Config{
		IdleLimit:     IdleLimit,
		WarningBefore: DefaultWarningBefore,
	}
}

// Monitor is the idle watchdog for one session view.
type Monitor struct {
	mu sync.Mutex

	idleLimit     time.Duration
	warningBefore time.Duration
	clock         Clock
	logger        *slog.Logger
	onExpire      func()
	onWarning     func(time.Duration)

	// generation invalidates callbacks from timers that were replaced.
	generation   uint64
	timer        Timer
	warnTimer    Timer
	deadline     time.Time
	lastActivity time.Time
	lastEvent    EventKind
	resets       int

	mountID uint64
	mounted bool
	expired bool
	unsubs  []func()
}

// NewMonitor creates an unmounted monitor.
func NewMonitor(cfg Config) *Monitor {
	if cfg.IdleLimit <= 0 {
		cfg.IdleLimit = IdleLimit
	}
	if cfg.WarningBefore == 0 {
		cfg.WarningBefore = DefaultWarningBefore
	}
	if cfg.WarningBefore >= cfg.IdleLimit {
		cfg.WarningBefore = -1
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	return &Monitor{
		idleLimit:     cfg.IdleLimit,
		warningBefore: cfg.WarningBefore,
		clock:         cfg.Clock,
		logger:        logging.OrDiscard(cfg.Logger),
		onExpire:      cfg.OnExpire,
		onWarning:     cfg.OnWarning,
		lastEvent:     -1,
	}
}

// Mount arms the deadline and attaches a listener for every activity event
// on src. The returned dispose function stops the timer and detaches every
// listener; it is idempotent. Mounting an already mounted monitor disposes
// the previous mount first.
func (m *Monitor) Mount(src EventSource) (dispose func()) {
	m.unmount("remount")

	unsubs := make([]func(), 0, len(ActivityEvents))
	for _, kind := range ActivityEvents {
		unsubs = append(unsubs, src.Subscribe(kind, m.Activity))
	}

	m.mu.Lock()
	m.mountID++
	id := m.mountID
	m.mounted = true
	m.expired = false
	m.unsubs = unsubs
	m.resets = 0
	m.armLocked()
	deadline := m.deadline
	m.mu.Unlock()

	logSessionEvent(m.logger, "SESSION_ARMED", "deadline", deadline.Format(time.RFC3339))

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			// A later Mount already replaced this one.
			stale := m.mountID != id || !m.mounted
			m.mu.Unlock()
			if !stale {
				m.unmount("dispose")
			}
		})
	}
}

// Activity records one interaction and re-arms the full idle limit. It is
// ignored while unmounted or after expiry.
func (m *Monitor) Activity(kind EventKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted || m.expired {
		return
	}
	m.lastEvent = kind
	m.resets++
	m.armLocked()
}

// armLocked replaces the outstanding timers with fresh ones.
func (m *Monitor) armLocked() {
	m.stopTimersLocked()
	m.generation++
	gen := m.generation

	now := m.clock.Now()
	m.lastActivity = now
	m.deadline = now.Add(m.idleLimit)
	m.timer = m.clock.AfterFunc(m.idleLimit, func() { m.expire(gen) })
	if m.warningBefore > 0 && m.onWarning != nil {
		m.warnTimer = m.clock.AfterFunc(m.idleLimit-m.warningBefore, func() { m.warn(gen) })
	}
}

func (m *Monitor) stopTimersLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
}

func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	if !m.mounted || m.expired || gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.expired = true
	m.timer = nil
	m.stopTimersLocked()
	unsubs := m.unsubs
	m.unsubs = nil
	onExpire := m.onExpire
	idle := m.clock.Now().Sub(m.lastActivity)
	m.mu.Unlock()

	// Listeners are detached first so that nothing re-arms mid-logout.
	for _, unsub := range unsubs {
		unsub()
	}
	logSessionEvent(m.logger, "SESSION_EXPIRED", "idle", FormatDuration(idle))

	if onExpire != nil {
		onExpire()
	}
}

func (m *Monitor) warn(gen uint64) {
	m.mu.Lock()
	if !m.mounted || m.expired || gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.warnTimer = nil
	remaining := m.deadline.Sub(m.clock.Now())
	onWarning := m.onWarning
	m.mu.Unlock()

	logSessionEvent(m.logger, "SESSION_WARNING", "remaining", FormatDuration(remaining))
	if onWarning != nil {
		onWarning(remaining)
	}
}

func (m *Monitor) unmount(reason string) {
	m.mu.Lock()
	if !m.mounted {
		m.mu.Unlock()
		return
	}
	m.mounted = false
	m.stopTimersLocked()
	// Bump so any callback already past its timer sees a stale generation.
	m.generation++
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	logSessionEvent(m.logger, "SESSION_DISPOSED", "reason", reason)
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a snapshot of the monitor.
type Status struct {
	Mounted      bool
	Expired      bool
	Deadline     time.Time
	Remaining    time.Duration
	LastActivity time.Time
	// LastEvent is meaningful only when Resets > 0.
	LastEvent EventKind
	Resets    int
}

// Status returns the current state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Mounted:      m.mounted,
		Expired:      m.expired,
		Deadline:     m.deadline,
		Remaining:    m.remainingLocked(),
		LastActivity: m.lastActivity,
		LastEvent:    m.lastEvent,
		Resets:       m.resets,
	}
}

// Remaining returns the time left before expiry, or 0 when not armed.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingLocked()
}

func (m *Monitor) remainingLocked() time.Duration {
	if !m.mounted || m.expired {
		return 0
	}
	if r := m.deadline.Sub(m.clock.Now()); r > 0 {
		return r
	}
	return 0
}

// InWarningWindow reports whether the deadline is within the warning period.
func (m *Monitor) InWarningWindow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted || m.expired || m.warningBefore <= 0 {
		return false
	}
	return m.remainingLocked() <= m.warningBefore
}

// IdleLimit returns the configured limit.
func (m *Monitor) IdleLimit() time.Duration {
	return m.idleLimit
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func logSessionEvent(logger *slog.Logger, event string, args ...any) {
	logger.Info("session event", append([]any{"event", event}, args...)...)
}

// FormatDuration returns a compact human-readable duration such as "14m 5s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
