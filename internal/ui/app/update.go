// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/router"
	"github.com/askmydocs/askmydocs-tui/internal/session"
	"github.com/askmydocs/askmydocs-tui/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Terminal input counts as activity before anything else sees it.
	if kind, ok := session.EventForMsg(msg); ok {
		m.bus.Publish(kind)
		if m.overlay.IsVisible() && !m.overlay.IsExpired() {
			m.overlay.Hide()
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.route == router.Dashboard && m.tab == TabAsk {
			var cmd tea.Cmd
			m.answer, cmd = m.answer.Update(msg)
			return m, cmd
		}
		return m, nil

	case components.FormSubmitMsg:
		next, req := m.submit(msg)
		if req == nil {
			return next, nil
		}
		return next, tea.Batch(req, next.startSpinner())

	case authResultMsg:
		return m.handleAuthResult(msg)

	case userLoadedMsg:
		return m.handleUserLoaded(msg)

	case passwordResultMsg:
		return m.handlePasswordResult(msg)

	case uploadResultMsg:
		return m.handleUploadResult(msg)

	case textResultMsg:
		return m.handleTextResult(msg)

	case answerMsg:
		return m.handleAnswer(msg)

	case session.ExpiredMsg:
		return m.handleExpired()

	case session.WarningMsg:
		if m.route == router.Dashboard {
			m.overlay.ShowWarning(msg.Remaining)
		}
		return m, nil

	case session.TickMsg:
		return m.handleTick()

	case storeChangedMsg:
		return m.handleStoreChanged()

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.status.Spinner = m.spinner.View()
		return m, cmd
	}

	return m, nil
}

// handleKey routes a key press: global bindings first, then the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.Close()
		return m, tea.Quit
	}

	// Any key acknowledges the expiry notice.
	if m.overlay.IsExpired() {
		m.overlay.Hide()
		return m, nil
	}

	switch m.route {
	case router.Login, router.Register:
		return m.handleAuthKey(msg)
	case router.Dashboard:
		return m.handleDashboardKey(msg)
	}
	return m, nil
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.login
	if m.route == router.Register {
		form = m.register
	}

	switch {
	case key.Matches(msg, m.keys.SwitchAuth):
		if m.route == router.Login {
			return m, m.navigate(router.Register)
		}
		return m, m.navigate(router.Login)
	case key.Matches(msg, m.keys.Back) && m.route == router.Register:
		return m, m.navigate(router.Login)
	}
	return m, form.Update(msg)
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Logout):
		if err := m.ctrl.Logout(); err != nil {
			m.toasts.AddError(auth.Message(err))
		}
		m.toasts.AddSuccess("Signed out")
		return m, m.applyPendingNav()
	case key.Matches(msg, m.keys.AskTab):
		return m, m.setTab(TabAsk)
	case key.Matches(msg, m.keys.UploadTab):
		return m, m.setTab(TabUpload)
	case key.Matches(msg, m.keys.TextTab):
		return m, m.setTab(TabText)
	case key.Matches(msg, m.keys.AccountTab):
		return m, m.setTab(TabAccount)
	case key.Matches(msg, m.keys.NextTab):
		return m, m.setTab((m.tab + 1) % Tab(len(tabNames)))
	}

	switch m.tab {
	case TabAsk:
		switch {
		case key.Matches(msg, m.keys.Model):
			m.queryModel = (m.queryModel + 1) % len(queryModels)
			return m, nil
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.answer, cmd = m.answer.Update(msg)
			return m, cmd
		}
		return m, m.ask.Update(msg)
	case TabUpload:
		return m, m.upload.Update(msg)
	case TabAccount:
		return m, m.password.Update(msg)
	case TabText:
		if key.Matches(msg, m.keys.SaveText) {
			next, req := m.submitText()
			if req == nil {
				return next, nil
			}
			return next, tea.Batch(req, next.startSpinner())
		}
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit marks the form busy and returns the request command, or nil when
// the form is already busy. Input is validated by the controller before
// any request is sent.
func (m Model) submit(msg components.FormSubmitMsg) (Model, tea.Cmd) {
	v := msg.Values
	form := m.formByID(msg.ID)
	if form == nil || form.Busy() {
		return m, nil
	}
	form.SetBusy(true)
	form.SetError("")
	form.SetNotice("")
	m.pending++
	m.status.Status = components.StatusLoading

	ctrl, ctx := m.ctrl, m.ctx
	switch msg.ID {
	case formLogin:
		return m, func() tea.Msg {
			return authResultMsg{form: auth.FormLogin, err: ctrl.Login(ctx, v["email"], v["password"])}
		}
	case formRegister:
		p := auth.Profile{Name: v["name"], Email: v["email"], Password: v["password"], Confirm: v["confirm"]}
		return m, func() tea.Msg {
			return authResultMsg{form: auth.FormRegister, err: ctrl.Register(ctx, p)}
		}
	case formPassword:
		p := auth.PasswordChange{Current: v["current"], New: v["new"], Confirm: v["confirm"]}
		return m, func() tea.Msg {
			message, err := ctrl.ChangePassword(ctx, p)
			return passwordResultMsg{message: message, err: err}
		}
	case formUpload:
		path := v["file"]
		return m, func() tea.Msg {
			up, err := ctrl.UploadFile(ctx, path)
			return uploadResultMsg{upload: up, err: err}
		}
	case formAsk:
		question, model := v["query"], queryModels[m.queryModel]
		return m, func() tea.Msg {
			reply, err := ctrl.Ask(ctx, question, model)
			return answerMsg{question: question, reply: reply, err: err}
		}
	}
	return m, nil
}

// submitText sends the text area contents.
func (m Model) submitText() (Model, tea.Cmd) {
	if m.textBusy {
		return m, nil
	}
	m.textBusy = true
	m.textNotice, m.textError = "", ""
	m.pending++
	m.status.Status = components.StatusLoading

	ctrl, ctx, text := m.ctrl, m.ctx, m.text.Value()
	return m, func() tea.Msg {
		message, err := ctrl.AddText(ctx, text)
		return textResultMsg{message: message, err: err}
	}
}

func (m Model) formByID(id string) *components.Form {
	switch id {
	case formLogin:
		return m.login
	case formRegister:
		return m.register
	case formPassword:
		return m.password
	case formUpload:
		return m.upload
	case formAsk:
		return m.ask
	}
	return nil
}

// loadUser fetches the signed-in account for the header.
func (m Model) loadUser() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		u, err := ctrl.CurrentUser(ctx)
		return userLoadedMsg{user: u, err: err}
	}
}

func (m Model) startSpinner() tea.Cmd {
	if m.pending != 1 {
		return nil
	}
	return m.spinner.Tick
}

// finish records the end of a request.
func (m *Model) finish(err error) {
	if m.pending > 0 {
		m.pending--
	}
	switch {
	case err != nil && !auth.IsKind(err, auth.KindValidation):
		m.status.Status = components.StatusError
	case m.pending == 0:
		m.status.Status = components.StatusReady
	}
	if m.route != router.Dashboard {
		m.status.Status = components.StatusSignedOut
	}
}

// =============================================================================
// RESULTS
// =============================================================================

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	form := m.login
	if msg.form == auth.FormRegister {
		form = m.register
	}
	form.SetBusy(false)
	m.finish(msg.err)
	if msg.err != nil {
		form.SetError(auth.Message(msg.err))
		if f := form.Field("password"); f != nil {
			f.Reset()
		}
		return m, nil
	}
	cmd := m.applyPendingNav()
	if m.route != router.Dashboard {
		cmd = m.navigate(router.Dashboard)
	}
	m.login.Reset()
	m.register.Reset()
	return m, cmd
}

func (m Model) handleUserLoaded(msg userLoadedMsg) (tea.Model, tea.Cmd) {
	if m.route != router.Dashboard {
		return m, nil
	}
	if msg.err != nil {
		m.toasts.AddError(auth.Message(msg.err))
		return m, m.startTicking()
	}
	m.user = msg.user
	m.header.SetUser(msg.user.Name, msg.user.Email)
	return m, nil
}

func (m Model) handlePasswordResult(msg passwordResultMsg) (tea.Model, tea.Cmd) {
	m.password.SetBusy(false)
	m.finish(msg.err)
	if msg.err != nil {
		m.password.SetError(auth.Message(msg.err))
		return m, nil
	}
	cmd := m.password.Reset()
	m.password.SetNotice(msg.message)
	m.toasts.AddSuccess(msg.message)
	return m, tea.Batch(cmd, m.startTicking())
}

func (m Model) handleUploadResult(msg uploadResultMsg) (tea.Model, tea.Cmd) {
	m.upload.SetBusy(false)
	m.finish(msg.err)
	if msg.err != nil {
		m.upload.SetError(auth.Message(msg.err))
		return m, nil
	}
	cmd := m.upload.Reset()
	m.upload.SetNotice(msg.upload.Message)
	return m, cmd
}

func (m Model) handleTextResult(msg textResultMsg) (tea.Model, tea.Cmd) {
	m.textBusy = false
	m.finish(msg.err)
	if msg.err != nil {
		m.textError = auth.Message(msg.err)
		return m, nil
	}
	m.text.Reset()
	m.textNotice = msg.message
	return m, nil
}

func (m Model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	m.ask.SetBusy(false)
	m.finish(msg.err)
	if msg.err != nil {
		m.ask.SetError(auth.Message(msg.err))
		return m, nil
	}
	m.question = msg.question
	m.reply = msg.reply
	m.ask.SetNotice(msg.reply.Message)
	m.renderReply()
	return m, nil
}

// =============================================================================
// SESSION EVENTS
// =============================================================================

// handleExpired runs on the UI goroutine after the monitor logged out.
func (m Model) handleExpired() (tea.Model, tea.Cmd) {
	m.overlay.ShowExpired()
	m.toasts.Clear()
	cmd := m.applyPendingNav()
	if cmd == nil {
		// Logout had nothing to do; still leave the dashboard.
		cmd = m.navigate(router.Login)
	}
	return m, cmd
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.toasts.Tick()
	if m.route == router.Dashboard {
		st := m.monitor.Status()
		m.status.Idle = st.Remaining
		m.status.Warning = m.monitor.InWarningWindow()
		if m.overlay.IsVisible() && !m.overlay.IsExpired() {
			m.overlay.UpdateTime(st.Remaining)
		}
	}
	if m.route != router.Dashboard && len(m.toasts.Toasts()) == 0 {
		m.ticking = false
		return m, nil
	}
	return m, session.TickCmd()
}

// handleStoreChanged follows a sign-in or sign-out made by another process.
func (m Model) handleStoreChanged() (tea.Model, tea.Cmd) {
	signedIn := m.ctrl.Restore()
	switch {
	case signedIn && m.route != router.Dashboard:
		return m, m.navigate(router.Dashboard)
	case !signedIn && m.route == router.Dashboard:
		m.toasts.AddWarning("Signed out in another window")
		return m, tea.Batch(m.navigate(router.Login), m.startTicking())
	}
	return m, nil
}
