// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmydocs/askmydocs-tui/internal/api"
	"github.com/askmydocs/askmydocs-tui/internal/apitest"
	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/logging"
	"github.com/askmydocs/askmydocs-tui/internal/router"
	"github.com/askmydocs/askmydocs-tui/internal/session"
	"github.com/askmydocs/askmydocs-tui/internal/tokenstore"
	"github.com/askmydocs/askmydocs-tui/internal/ui/components"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "secret1"
)

// =============================================================================
// HARNESS
// =============================================================================

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) count(match func(tea.Msg) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, msg := range r.msgs {
		if match(msg) {
			n++
		}
	}
	return n
}

func (r *recordingSender) expired() int {
	return r.count(func(msg tea.Msg) bool {
		_, ok := msg.(session.ExpiredMsg)
		return ok
	})
}

type harness struct {
	m      Model
	srv    *apitest.Server
	store  *tokenstore.Store
	clock  *session.ManualClock
	sender *recordingSender
}

func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("Ada", testEmail, testPassword)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	cfg.Storage.Backend = config.BackendMemory
	cfg.SetDefaults()

	store := tokenstore.New(tokenstore.NewMemoryKV(), logging.Discard())
	if signedIn {
		require.NoError(t, store.Save(srv.IssueToken(testEmail, time.Hour)))
	}
	client := api.NewClient(srv.URL)
	ctrl := auth.New(client, store, nil).WithLogger(logging.Discard())

	h := &harness{
		srv:    srv,
		store:  store,
		clock:  session.NewManualClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		sender: &recordingSender{},
	}
	h.m = New(Deps{
		Controller: ctrl,
		Guard:      router.NewGuard(store),
		Config:     cfg,
		Logger:     logging.Discard(),
		Clock:      h.clock,
	})
	h.m.Attach(h.sender)
	t.Cleanup(func() { h.m.Close() })
	return h
}

// update feeds msg through Update and keeps the result. Returned commands
// are dropped; requests are run explicitly with submit.
func (h *harness) update(msg tea.Msg) {
	next, _ := h.m.Update(msg)
	h.m = next.(Model)
}

// submit runs a form submission and feeds its result back.
func (h *harness) submit(t *testing.T, id string, values map[string]string) {
	t.Helper()
	next, req := h.m.submit(components.FormSubmitMsg{ID: id, Values: values})
	require.NotNil(t, req, "submission should produce a request")
	h.m = next
	h.update(req())
}

func (h *harness) token() string {
	tok, _ := h.store.Get()
	return tok
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func (h *harness) mounted() bool {
	return h.m.bus.ListenerCount() == len(session.ActivityEvents) && h.m.monitor.Status().Mounted
}

// =============================================================================
// ROUTING
// =============================================================================

func TestNew_StartsAtLoginWithoutToken(t *testing.T) {
	h := newHarness(t, false)

	assert.Equal(t, router.Login, h.m.Route())
	assert.Equal(t, 0, h.m.bus.ListenerCount())
	assert.Equal(t, 0, h.clock.Pending())
	assert.Contains(t, h.m.View(), "Login")
}

func TestNew_StoredTokenOpensDashboard(t *testing.T) {
	h := newHarness(t, true)

	assert.Equal(t, router.Dashboard, h.m.Route())
	assert.True(t, h.mounted())
	assert.Equal(t, session.IdleLimit, h.m.monitor.Remaining())
	assert.Contains(t, h.m.View(), "F1 Ask")
}

func TestDashboard_NarrowTabsDropKeyPrefix(t *testing.T) {
	h := newHarness(t, true)

	h.update(tea.WindowSizeMsg{Width: 50, Height: 30})
	view := h.m.View()
	assert.NotContains(t, view, "F1 Ask")
	assert.Contains(t, view, "Ask")
}

func TestNavigate_DashboardWithoutTokenRedirects(t *testing.T) {
	h := newHarness(t, false)

	h.m.navigate(router.Dashboard)
	assert.Equal(t, router.Login, h.m.Route())
	assert.False(t, h.mounted())
}

func TestSwitchBetweenLoginAndRegister(t *testing.T) {
	h := newHarness(t, false)

	h.update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, router.Register, h.m.Route())
	assert.Contains(t, h.m.View(), "Confirm Password")

	h.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, router.Login, h.m.Route())
}

// =============================================================================
// LOGIN AND REGISTRATION
// =============================================================================

func TestLogin_OpensDashboardAndMountsMonitor(t *testing.T) {
	h := newHarness(t, false)

	h.submit(t, formLogin, map[string]string{"email": testEmail, "password": testPassword})

	assert.Equal(t, router.Dashboard, h.m.Route())
	assert.NotEmpty(t, h.token())
	assert.False(t, h.m.login.Busy())
	assert.Empty(t, h.m.login.Error())
	assert.True(t, h.mounted())
}

func TestLogin_FailureStaysOnLogin(t *testing.T) {
	h := newHarness(t, false)

	h.submit(t, formLogin, map[string]string{"email": testEmail, "password": "wrong!"})

	assert.Equal(t, router.Login, h.m.Route())
	assert.Equal(t, "Invalid credentials", h.m.login.Error())
	assert.Empty(t, h.m.login.Field("password").Value())
	assert.Empty(t, h.token())
	assert.False(t, h.mounted())
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	h := newHarness(t, false)
	values := map[string]string{"email": testEmail, "password": testPassword}

	next, req := h.m.submit(components.FormSubmitMsg{ID: formLogin, Values: values})
	require.NotNil(t, req)
	assert.True(t, next.login.Busy())

	_, again := next.submit(components.FormSubmitMsg{ID: formLogin, Values: values})
	assert.Nil(t, again)
}

func TestRegister_ValidationSendsNothing(t *testing.T) {
	h := newHarness(t, false)
	h.update(tea.KeyMsg{Type: tea.KeyCtrlR})

	h.submit(t, formRegister, map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "secret1", "confirm": "secret2",
	})

	assert.Equal(t, auth.MsgPasswordMismatch, h.m.register.Error())
	assert.Equal(t, router.Register, h.m.Route())
	assert.Equal(t, 0, h.srv.TotalRequests())
}

func TestRegister_OpensDashboard(t *testing.T) {
	h := newHarness(t, false)
	h.update(tea.KeyMsg{Type: tea.KeyCtrlR})

	h.submit(t, formRegister, map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "secret1", "confirm": "secret1",
	})

	assert.Equal(t, router.Dashboard, h.m.Route())
	assert.NotEmpty(t, h.token())
}

// =============================================================================
// INACTIVITY
// =============================================================================

func TestIdle_ExpiresAfterLimitAndReturnsToLogin(t *testing.T) {
	h := newHarness(t, true)

	h.clock.Advance(session.IdleLimit - time.Second)
	assert.Equal(t, 0, h.sender.expired())
	assert.NotEmpty(t, h.token())

	h.clock.Advance(time.Second)
	assert.Equal(t, 1, h.sender.expired())
	assert.Empty(t, h.token(), "token cleared before the view changes")

	h.update(session.ExpiredMsg{})
	assert.Equal(t, router.Login, h.m.Route())
	assert.True(t, h.m.overlay.IsExpired())
	assert.Equal(t, 0, h.m.bus.ListenerCount())
	assert.Equal(t, 0, h.clock.Pending())
	assert.Nil(t, h.m.user)

	h.clock.Advance(time.Hour)
	assert.Equal(t, 1, h.sender.expired(), "logs out exactly once")
}

func TestIdle_KeyPressResetsFullLimit(t *testing.T) {
	h := newHarness(t, true)

	h.clock.Advance(14 * time.Minute)
	h.update(keyRune('a'))
	assert.Equal(t, session.IdleLimit, h.m.monitor.Remaining())

	h.clock.Advance(14 * time.Minute)
	assert.Equal(t, 0, h.sender.expired())
	assert.NotEmpty(t, h.token())

	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.sender.expired())
}

func TestIdle_MouseActivityResets(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.MouseMsg
	}{
		{"motion", tea.MouseMsg{Type: tea.MouseMotion, X: 3, Y: 4}},
		{"click", tea.MouseMsg{Type: tea.MouseLeft}},
		{"wheel", tea.MouseMsg{Type: tea.MouseWheelDown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			h.clock.Advance(10 * time.Minute)
			h.update(tt.msg)
			assert.Equal(t, session.IdleLimit, h.m.monitor.Remaining())
		})
	}
}

func TestIdle_NonInputMessagesDoNotReset(t *testing.T) {
	h := newHarness(t, true)

	h.clock.Advance(10 * time.Minute)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.update(session.TickMsg{Time: h.clock.Now()})
	assert.Equal(t, 5*time.Minute, h.m.monitor.Remaining())
	assert.Equal(t, 5*time.Minute, h.m.status.Idle)
}

func TestWarning_ShownThenDismissedByActivity(t *testing.T) {
	h := newHarness(t, true)

	h.clock.Advance(session.IdleLimit - session.DefaultWarningBefore)
	warnings := h.sender.count(func(msg tea.Msg) bool {
		_, ok := msg.(session.WarningMsg)
		return ok
	})
	require.Equal(t, 1, warnings)

	h.update(session.WarningMsg{Remaining: session.DefaultWarningBefore})
	assert.True(t, h.m.overlay.IsVisible())
	assert.Contains(t, h.m.View(), "Still there?")

	h.update(keyRune('x'))
	assert.False(t, h.m.overlay.IsVisible())
	assert.Equal(t, session.IdleLimit, h.m.monitor.Remaining())
}

func TestExpiredNotice_AnyKeyDismisses(t *testing.T) {
	h := newHarness(t, true)
	h.clock.Advance(session.IdleLimit)
	h.update(session.ExpiredMsg{})
	require.True(t, h.m.overlay.IsExpired())

	h.update(keyRune('q'))
	assert.False(t, h.m.overlay.IsVisible())
	assert.Equal(t, router.Login, h.m.Route())
	assert.Empty(t, h.m.login.Field("email").Value(), "dismissing key is not typed")
}

func TestLogoutKey_DisposesMonitor(t *testing.T) {
	h := newHarness(t, true)

	h.update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, router.Login, h.m.Route())
	assert.Empty(t, h.token())
	assert.Equal(t, 0, h.m.bus.ListenerCount())
	assert.Equal(t, 0, h.clock.Pending())

	h.clock.Advance(time.Hour)
	assert.Equal(t, 0, h.sender.expired())
}

func TestQuit_DisposesMonitor(t *testing.T) {
	h := newHarness(t, true)

	next, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	h.m = next.(Model)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 0, h.clock.Pending())
	assert.NotEmpty(t, h.token(), "quitting keeps the session")
}

func TestStoreChanged_FollowsOtherProcess(t *testing.T) {
	h := newHarness(t, true)

	require.NoError(t, h.store.Clear())
	h.update(storeChangedMsg{})
	assert.Equal(t, router.Login, h.m.Route())
	assert.False(t, h.mounted())

	require.NoError(t, h.store.Save(h.srv.IssueToken(testEmail, time.Hour)))
	h.update(storeChangedMsg{})
	assert.Equal(t, router.Dashboard, h.m.Route())
	assert.True(t, h.mounted())
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestLoadUser_FillsHeader(t *testing.T) {
	h := newHarness(t, true)

	h.update(h.m.loadUser()())

	require.NotNil(t, h.m.user)
	assert.Equal(t, testEmail, h.m.user.Email)
	assert.Equal(t, testEmail, h.m.header.Email)
}

func TestAsk_EmptyQuestionRejectedLocally(t *testing.T) {
	h := newHarness(t, true)

	h.submit(t, formAsk, map[string]string{"query": "   "})

	assert.Equal(t, auth.MsgEnterQuestion, h.m.ask.Error())
	assert.Equal(t, 0, h.srv.Requests("POST /chat/query"))
	assert.Nil(t, h.m.reply)
}

func TestAsk_ShowsAnswerWithSelectedModel(t *testing.T) {
	h := newHarness(t, true)

	h.submit(t, formAsk, map[string]string{"query": "what is indexed?"})
	require.NotNil(t, h.m.reply)
	assert.Equal(t, "Response from llama3", h.m.ask.Notice())
	assert.Greater(t, h.m.answer.TotalLineCount(), 0)

	h.update(tea.KeyMsg{Type: tea.KeyCtrlO})
	h.submit(t, formAsk, map[string]string{"query": "and now?"})
	assert.Equal(t, "Response from openai", h.m.ask.Notice())
	assert.Equal(t, 2, h.srv.Requests("POST /chat/query"))
}

func TestAddText(t *testing.T) {
	h := newHarness(t, true)
	h.update(tea.KeyMsg{Type: tea.KeyF3})
	require.Equal(t, TabText, h.m.tab)

	h.m.text.SetValue("   ")
	next, req := h.m.submitText()
	h.m = next
	h.update(req())
	assert.Equal(t, auth.MsgEnterText, h.m.textError)

	h.m.text.SetValue("Quarterly numbers are up.")
	next, req = h.m.submitText()
	h.m = next
	h.update(req())
	assert.Equal(t, auth.MsgTextAdded, h.m.textNotice)
	assert.Empty(t, h.m.text.Value())
	assert.Len(t, h.srv.Documents(), 1)
}

func TestUpload_UnsupportedFileRejectedLocally(t *testing.T) {
	h := newHarness(t, true)

	h.submit(t, formUpload, map[string]string{"file": "notes.docx"})

	assert.Equal(t, auth.MsgUnsupportedFile, h.m.upload.Error())
	assert.Equal(t, 0, h.srv.Requests("POST /upload/"))
}

func TestChangePassword_KeepsSession(t *testing.T) {
	h := newHarness(t, true)
	before := h.token()

	h.submit(t, formPassword, map[string]string{"current": testPassword, "new": "newpass", "confirm": "newpass"})

	assert.Empty(t, h.m.password.Error())
	assert.NotEmpty(t, h.m.password.Notice())
	assert.Empty(t, h.m.password.Field("current").Value())
	assert.Equal(t, before, h.token())
	assert.Equal(t, router.Dashboard, h.m.Route())
}

func TestTabs_Cycle(t *testing.T) {
	h := newHarness(t, true)

	for _, want := range []Tab{TabUpload, TabText, TabAccount, TabAsk} {
		h.update(tea.KeyMsg{Type: tea.KeyCtrlN})
		assert.Equal(t, want, h.m.tab)
	}
	assert.Equal(t, "Add Text", TabText.String())
}
