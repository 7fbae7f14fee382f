// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/askmydocs/askmydocs-tui/internal/api"
	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/logging"
	"github.com/askmydocs/askmydocs-tui/internal/router"
	"github.com/askmydocs/askmydocs-tui/internal/session"
	"github.com/askmydocs/askmydocs-tui/internal/tokenstore"
	"github.com/askmydocs/askmydocs-tui/internal/ui/components"
	"github.com/askmydocs/askmydocs-tui/internal/ui/styles"
)

// =============================================================================
// DASHBOARD TABS
// =============================================================================

// Tab is a dashboard panel.
type Tab int

const (
	TabAsk Tab = iota
	TabUpload
	TabText
	TabAccount
)

var tabNames = []string{"Ask", "Upload", "Add Text", "Account"}

// String returns the tab label.
func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// models offered on the Ask tab.
var queryModels = []string{config.ModelLlama3, config.ModelOpenAI}

// Form IDs used in FormSubmitMsg.
const (
	formLogin    = "login"
	formRegister = "register"
	formPassword = "password"
	formUpload   = "upload"
	formAsk      = "ask"
)

// =============================================================================
// MODEL
// =============================================================================

// Deps are the collaborators the model drives.
type Deps struct {
	Controller *auth.Controller
	Guard      *router.Guard
	Config     *config.Config
	Logger     *slog.Logger

	// Clock drives the inactivity monitor; nil uses the real clock.
	Clock session.Clock

	// WatchPath is the session file to watch for sign-in and sign-out by
	// other processes. Empty disables watching.
	WatchPath string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl   *auth.Controller
	guard  *router.Guard
	cfg    *config.Config
	logger *slog.Logger
	theme  *styles.Theme
	keys   KeyMap

	nav     *pendingNav
	sender  *lazySender
	bus     *session.Bus
	monitor *session.Monitor
	dispose func()

	watchPath string
	initCmd   tea.Cmd

	// Routing
	route router.Path
	user  *api.User

	// Auth views
	login    *components.Form
	register *components.Form

	// Dashboard
	tab        Tab
	ask        *components.Form
	queryModel int
	question   string
	reply      *auth.Reply
	answer     viewport.Model
	md         *glamour.TermRenderer
	mdWidth    int
	upload     *components.Form
	text       textarea.Model
	textNotice string
	textError  string
	textBusy   bool
	password   *components.Form

	// Chrome
	header  *components.Header
	status  *components.StatusBar
	toasts  *components.ToastManager
	overlay components.SessionTimeoutOverlay
	spinner spinner.Model
	pending int
	ticking bool

	width    int
	height   int
	quitting bool
}

// New creates the model, installs it as the controller's navigator and
// resolves the initial route from the stored token.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Global()
	}
	logger := logging.OrDiscard(deps.Logger)
	theme := styles.NewTheme()
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		ctx:       ctx,
		cancel:    cancel,
		ctrl:      deps.Controller,
		guard:     deps.Guard,
		cfg:       cfg,
		logger:    logger,
		theme:     theme,
		keys:      DefaultKeyMap(),
		nav:       &pendingNav{},
		sender:    &lazySender{},
		bus:       session.NewBus(),
		watchPath: deps.WatchPath,
		header:    components.NewHeader(theme),
		status:    components.NewStatusBar(theme),
		toasts:    components.NewToastManager(),
		overlay:   components.NewSessionTimeoutOverlay(),
		width:     80,
		height:    24,
	}
	m.ctrl.WithNavigator(m.nav)

	expire, warning := session.NotifyProgram(m.sender, func() {
		// The token goes now; the view follows when ExpiredMsg arrives.
		if err := m.ctrl.Logout(); err != nil {
			logger.Warn("logout after inactivity", "error", err)
		}
	})
	m.monitor = session.NewMonitor(session.Config{
		OnExpire:  expire,
		OnWarning: warning,
		Clock:     deps.Clock,
		Logger:    logger,
	})

	m.login = components.NewForm(theme, formLogin, "Login", "Login",
		components.NewField(theme, "email", "Email", "you@example.com", false),
		components.NewField(theme, "password", "Password", "", true),
	)
	m.register = components.NewForm(theme, formRegister, "Sign Up", "Sign Up",
		components.NewField(theme, "name", "Name", "", false),
		components.NewField(theme, "email", "Email", "you@example.com", false),
		components.NewField(theme, "password", "Password", "at least 6 characters", true),
		components.NewField(theme, "confirm", "Confirm Password", "", true),
	)
	m.ask = components.NewForm(theme, formAsk, "", "Ask",
		components.NewField(theme, "query", "Question", "Ask something about your documents", false),
	)
	m.upload = components.NewForm(theme, formUpload, "", "Upload",
		components.NewField(theme, "file", "File", "path to a .pdf, .txt or .md file", false),
	)
	m.password = components.NewForm(theme, formPassword, "Change Password", "Update Password",
		components.NewField(theme, "current", "Current Password", "", true),
		components.NewField(theme, "new", "New Password", "", true),
		components.NewField(theme, "confirm", "Confirm New Password", "", true),
	)

	m.text = textarea.New()
	m.text.Placeholder = "Paste or type text to index..."
	m.text.ShowLineNumbers = false
	m.text.CharLimit = 0

	m.answer = viewport.New(76, 10)
	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	for i, name := range queryModels {
		if name == cfg.Query.DefaultModel {
			m.queryModel = i
		}
	}

	m.layout()
	m.ctrl.Restore()
	m.initCmd = m.navigate(router.Root)
	return m
}

// Attach connects the model to the running program so that idle expiry and
// store changes reach Update. Call it before p.Run.
func (m Model) Attach(p session.Sender) {
	m.sender.attach(p)
}

// Close disposes the inactivity monitor and stops background work.
func (m Model) Close() {
	if m.dispose != nil {
		m.dispose()
	}
	m.cancel()
}

// Route returns the current route.
func (m Model) Route() router.Path { return m.route }

// Init starts the file watcher and the first view's commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initCmd}
	if m.watchPath != "" {
		if err := tokenstore.Watch(m.ctx, m.watchPath, func() {
			m.sender.Send(storeChangedMsg{})
		}); err != nil {
			m.logger.Warn("session file watch unavailable", "path", m.watchPath, "error", err)
		}
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// ROUTING
// =============================================================================

// navigate resolves p through the guard and switches views. The monitor is
// mounted while the dashboard is shown and disposed when it is left.
func (m *Model) navigate(p router.Path) tea.Cmd {
	d := m.guard.Resolve(p)
	if d.Path == m.route {
		return nil
	}
	prev := m.route
	m.route = d.Path
	if r, ok := router.Lookup(d.Path); ok {
		m.header.SetLocation(r.Title)
	}
	m.logger.Debug("navigate", "requested", d.Requested, "path", d.Path, "redirected", d.Redirected)

	if prev == router.Dashboard {
		m.unmountSession()
	}

	switch d.Path {
	case router.Dashboard:
		m.dispose = m.monitor.Mount(m.bus)
		m.status.Status = components.StatusReady
		return tea.Batch(m.loadUser(), m.setTab(TabAsk), m.startTicking())
	case router.Register:
		m.status.Status = components.StatusSignedOut
		return m.register.Focus(0)
	default:
		m.status.Status = components.StatusSignedOut
		return m.login.Focus(0)
	}
}

// applyPendingNav performs a navigation the controller requested.
func (m *Model) applyPendingNav() tea.Cmd {
	if p, ok := m.nav.take(); ok {
		return m.navigate(p)
	}
	return nil
}

// unmountSession disposes the monitor and forgets the signed-in user.
func (m *Model) unmountSession() {
	if m.dispose != nil {
		m.dispose()
		m.dispose = nil
	}
	m.status.Idle = 0
	m.status.Warning = false
	if !m.overlay.IsExpired() {
		m.overlay.Hide()
	}
	m.user = nil
	m.header.SetUser("", "")
	m.reply = nil
	m.question = ""
	m.answer.SetContent("")
	m.ask.Reset()
	m.upload.Reset()
	m.password.Reset()
	m.text.Reset()
	m.textNotice, m.textError = "", ""
	m.login.Reset()
	m.register.Reset()
}

// setTab switches the dashboard panel and focuses its first input.
func (m *Model) setTab(t Tab) tea.Cmd {
	m.tab = t
	m.ask.Blur()
	m.upload.Blur()
	m.password.Blur()
	m.text.Blur()
	switch t {
	case TabUpload:
		return m.upload.Focus(0)
	case TabText:
		return m.text.Focus()
	case TabAccount:
		return m.password.Focus(0)
	default:
		return m.ask.Focus(0)
	}
}

// startTicking begins the one-second loop for the idle countdown and toast
// expiry unless it is already running.
func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return session.TickCmd()
}

// layout sizes every component from the window.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.overlay.SetSize(m.width, m.height)

	formWidth := 44
	if m.width-8 < formWidth {
		formWidth = max(m.width-8, 20)
	}
	m.login.SetWidth(formWidth)
	m.register.SetWidth(formWidth)
	m.password.SetWidth(formWidth)

	inner := max(m.width-6, 20)
	m.ask.SetWidth(inner)
	m.upload.SetWidth(inner)
	m.text.SetWidth(inner)
	m.text.SetHeight(max(m.height-14, 3))

	m.answer.Width = inner
	m.answer.Height = max(m.height-16, 3)
	if m.reply != nil {
		m.renderReply()
	}
}
