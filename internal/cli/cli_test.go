// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmydocs/askmydocs-tui/internal/api"
	"github.com/askmydocs/askmydocs-tui/internal/apitest"
	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/logging"
	"github.com/askmydocs/askmydocs-tui/internal/session"
	"github.com/askmydocs/askmydocs-tui/internal/tokenstore"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "secret1"
)

// =============================================================================
// FIXTURE
// =============================================================================

type fixture struct {
	env    *Env
	srv    *apitest.Server
	out    *bytes.Buffer
	errOut *bytes.Buffer
	prompt *ScriptedPrompter
}

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.HomeEnv, dir)
	for _, key := range []string{
		"ASKMYDOCS_API_BASE", "VITE_API_BASE", "ASKMYDOCS_STORAGE", "ASKMYDOCS_STORAGE_PATH",
		"ASKMYDOCS_MODEL", "ASKMYDOCS_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)
	return dir
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	isolateConfig(t)

	srv := apitest.New(t)
	srv.AddUser("Ada", testEmail, testPassword)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	cfg.Storage.Backend = config.BackendMemory
	cfg.SetDefaults()

	f := &fixture{
		srv:    srv,
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		prompt: &ScriptedPrompter{},
	}
	f.env = &Env{
		Config: cfg,
		Logger: logging.Discard(),
		Out:    f.out,
		Err:    f.errOut,
		In:     strings.NewReader(""),
		Prompt: f.prompt,
	}
	f.env.Wire(tokenstore.New(tokenstore.NewMemoryKV(), f.env.Logger))
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, HandleLogin(f.env, Args{Rest: []string{"--email", testEmail, "--password", testPassword}}))
	f.out.Reset()
}

func (f *fixture) token() string {
	tok, _ := f.env.Store.Get()
	return tok
}

// decode parses a JSONResponse whose data is decoded into data.
func decode(t *testing.T, raw []byte, data interface{}) JSONResponse {
	t.Helper()
	var resp JSONResponse
	resp.Data = data
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	return resp
}

// =============================================================================
// PARSING
// =============================================================================

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{nil, CmdTUI},
		{[]string{"tui"}, CmdTUI},
		{[]string{"login"}, CmdLogin},
		{[]string{"signup"}, CmdRegister},
		{[]string{"signout"}, CmdLogout},
		{[]string{"me"}, CmdWhoami},
		{[]string{"password"}, CmdPasswd},
		{[]string{"upload", "a.pdf"}, CmdUpload},
		{[]string{"add", "-"}, CmdAdd},
		{[]string{"q", "why"}, CmdAsk},
		{[]string{"chat"}, CmdChat},
		{[]string{"s"}, CmdStatus},
		{[]string{"config", "show"}, CmdConfig},
		{[]string{"--version"}, CmdVersion},
		{[]string{"-h"}, CmdHelp},
		{[]string{"frobnicate"}, CmdUnknown},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, "_"), func(t *testing.T) {
			got, _ := Parse(tt.argv)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_GlobalFlagsAnywhere(t *testing.T) {
	cmd, args := Parse([]string{"--json", "--api=http://docs:8000", "ask", "--storage", "memory", "-m", "openai", "what", "now"})

	assert.Equal(t, CmdAsk, cmd)
	assert.True(t, args.JSON)
	assert.Equal(t, "http://docs:8000", args.APIBase)
	assert.Equal(t, "memory", args.Storage)
	assert.Equal(t, "ask", args.Name)
	assert.Equal(t, []string{"-m", "openai", "what", "now"}, args.Rest)
}

func TestCommand_NeedsSession(t *testing.T) {
	assert.True(t, CmdLogin.NeedsSession())
	assert.True(t, CmdChat.NeedsSession())
	assert.False(t, CmdConfig.NeedsSession())
	assert.False(t, CmdVersion.NeedsSession())
	assert.Equal(t, "passwd", CmdPasswd.String())
	assert.Equal(t, "unknown", CmdUnknown.String())
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"--model=openai", "--sources", "what", "is", "-", "--", "--literal"}, "sources")

	assert.Equal(t, "openai", p.Flag("model", "m"))
	assert.True(t, p.BoolFlag("sources"))
	assert.Equal(t, []string{"what", "is", "-", "--literal"}, p.PositionalFrom(0))
	assert.Equal(t, "what is - --literal", p.Joined(0))
	assert.Equal(t, "", p.Positional(9))

	v, ok := NewArgParser([]string{"--password="}).Lookup("password")
	assert.True(t, ok, "explicit empty value is present")
	assert.Equal(t, "", v)
	_, ok = NewArgParser(nil).Lookup("password")
	assert.False(t, ok)

	assert.Equal(t, "llama3", NewArgParser(nil).FlagOrDefault("model", "llama3"))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation kind", &auth.Error{Kind: auth.KindValidation}, ExitUsageError},
		{"auth kind", &auth.Error{Kind: auth.KindAuth}, ExitAuthError},
		{"network kind", &auth.Error{Kind: auth.KindNetwork, Cause: api.ErrNetwork}, ExitNetworkError},
		{"backend kind", &auth.Error{Kind: auth.KindBackend}, ExitGeneralError},
		{"usage", NewValidationError("model", "x", "bad"), ExitUsageError},
		{"not found", NewNotFoundError("config key", "x"), ExitNotFoundError},
		{"config", NewCommandError("config", "load", "broken", errors.New("eof")), ExitConfigError},
		{"not authenticated", fmt.Errorf("me: %w", api.ErrNotAuthenticated), ExitAuthError},
		{"generic", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayErrorJSON_SessionError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, "login", &auth.Error{Kind: auth.KindAuth, Op: "login", Message: "Invalid credentials"}, true)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Invalid credentials", out["error"])
	assert.Equal(t, "session_error", out["error_type"])
	assert.Equal(t, "login", out["command"])
	assert.NotEmpty(t, out["timestamp"])
	details, ok := out["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "auth", details["kind"])
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

func TestHandleLogin_Flags(t *testing.T) {
	f := newFixture(t)

	err := HandleLogin(f.env, Args{Rest: []string{"--email", testEmail, "--password", testPassword}})
	require.NoError(t, err)

	assert.NotEmpty(t, f.token())
	assert.Contains(t, f.out.String(), "Signed in as "+testEmail)
	assert.Empty(t, f.prompt.Asked, "no prompts when flags are given")
}

func TestHandleLogin_Prompts(t *testing.T) {
	f := newFixture(t)
	f.prompt.Answers = []string{testEmail, testPassword}

	require.NoError(t, HandleLogin(f.env, Args{}))
	assert.Equal(t, []string{"Email", "Password"}, f.prompt.Asked)
	assert.NotEmpty(t, f.token())
}

func TestHandleLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)

	err := HandleLogin(f.env, Args{Rest: []string{"--email", testEmail, "--password", "wrong"}})
	require.Error(t, err)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.Equal(t, "Invalid credentials", auth.Message(err))
	assert.Empty(t, f.token())
}

func TestHandleLogin_JSON(t *testing.T) {
	f := newFixture(t)

	err := HandleLogin(f.env, Args{JSON: true, Rest: []string{"--email", testEmail, "--password", testPassword}})
	require.NoError(t, err)

	var data SessionData
	resp := decode(t, f.out.Bytes(), &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "login", resp.Command)
	assert.Equal(t, testEmail, data.Email)
	assert.True(t, data.LoggedIn)
	assert.Equal(t, config.BackendMemory, data.Storage)
	assert.NotEmpty(t, data.ExpiresAt)
}

func TestHandleRegister_ValidationNeverCallsBackend(t *testing.T) {
	f := newFixture(t)

	err := HandleRegister(f.env, Args{Rest: []string{
		"--name", "Grace", "--email", "grace@example.com", "--password", "abc", "--confirm", "abc",
	}})
	require.Error(t, err)
	assert.Equal(t, auth.MsgPasswordTooShort, auth.Message(err))
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Zero(t, f.srv.TotalRequests())
}

func TestHandleRegister_CreatesAccount(t *testing.T) {
	f := newFixture(t)
	f.prompt.Answers = []string{"Grace", "grace@example.com", "hopper1", "hopper1"}

	require.NoError(t, HandleRegister(f.env, Args{}))
	assert.Equal(t, []string{"Name", "Email", "Password", "Confirm password"}, f.prompt.Asked)
	assert.NotEmpty(t, f.token())
	assert.Contains(t, f.out.String(), "Account created")
}

func TestHandleLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	require.NoError(t, HandleLogout(f.env, Args{}))
	assert.Empty(t, f.token())
	assert.False(t, f.env.Client.HasAuthToken())

	require.NoError(t, HandleLogout(f.env, Args{}), "signing out twice is fine")
	assert.Zero(t, f.srv.Requests("POST /auth/logout"), "logout is local")
}

func TestHandleWhoami(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	require.NoError(t, HandleWhoami(f.env, Args{JSON: true}))
	var data UserData
	decode(t, f.out.Bytes(), &data)
	assert.Equal(t, "Ada", data.Name)
	assert.Equal(t, testEmail, data.Email)
}

func TestHandleWhoami_SignedOutMakesNoRequest(t *testing.T) {
	f := newFixture(t)

	err := HandleWhoami(f.env, Args{})
	require.Error(t, err)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.Zero(t, f.srv.TotalRequests())
}

func TestHandlePasswd(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.prompt.Answers = []string{testPassword, "newpass1", "newpass1"}

	require.NoError(t, HandlePasswd(f.env, Args{}))
	assert.Contains(t, f.out.String(), "Password updated")
	assert.Equal(t, []string{"Current password", "New password", "Confirm new password"}, f.prompt.Asked)

	f.out.Reset()
	err := HandleLogin(f.env, Args{Rest: []string{"--email", testEmail, "--password", "newpass1"}})
	assert.NoError(t, err, "new password works")
}

func TestHandlePasswd_MismatchIsLocal(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	before := f.srv.TotalRequests()

	err := HandlePasswd(f.env, Args{Rest: []string{"--current", testPassword, "--new", "newpass1", "--confirm", "newpass2"}})
	require.Error(t, err)
	assert.Equal(t, auth.MsgNewPasswordMismatch, auth.Message(err))
	assert.Equal(t, before, f.srv.TotalRequests())
}

// =============================================================================
// DOCUMENT COMMANDS
// =============================================================================

func TestHandleUpload_ContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	dir := t.TempDir()
	good := filepath.Join(dir, "notes.md")
	bad := filepath.Join(dir, "tool.exe")
	require.NoError(t, os.WriteFile(good, []byte("# Notes\nThe office closes at 6pm."), 0600))
	require.NoError(t, os.WriteFile(bad, []byte("MZ"), 0600))

	err := HandleUpload(f.env, Args{JSON: true, Rest: []string{bad, good}})
	require.Error(t, err)
	assert.Equal(t, auth.MsgUnsupportedFile, auth.Message(err))

	var data UploadData
	decode(t, f.out.Bytes(), &data)
	require.Len(t, data.Files, 2)
	assert.Equal(t, auth.MsgUnsupportedFile, data.Files[0].Error)
	assert.Equal(t, "notes.md", data.Files[1].Filename)
	assert.Equal(t, "Uploaded: notes.md", data.Files[1].Message)

	docs := f.srv.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.md", docs[0].Filename)
}

func TestHandleUpload_NoFiles(t *testing.T) {
	f := newFixture(t)
	err := HandleUpload(f.env, Args{})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleAdd_FromStdin(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.env.In = strings.NewReader("Travel is approved by the team lead.\n")

	require.NoError(t, HandleAdd(f.env, Args{Rest: []string{"-"}}))
	assert.Contains(t, f.out.String(), auth.MsgTextAdded)

	docs := f.srv.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "Travel is approved by the team lead.", docs[0].Content)
	assert.True(t, strings.HasPrefix(docs[0].ID, "doc-"))
}

func TestHandleAdd_Empty(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	before := f.srv.TotalRequests()

	err := HandleAdd(f.env, Args{Rest: []string{"   "}})
	require.Error(t, err)
	assert.Equal(t, auth.MsgEnterText, auth.Message(err))
	assert.Equal(t, before, f.srv.TotalRequests())
}

func TestHandleAsk_JSON(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, HandleAdd(f.env, Args{Rest: []string{"refund", "policy:", "thirty", "days"}}))
	f.out.Reset()

	require.NoError(t, HandleAsk(f.env, Args{JSON: true, Rest: []string{"--model", "openai", "what", "is", "the", "refund", "policy"}}))

	var data AnswerData
	resp := decode(t, f.out.Bytes(), &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "what is the refund policy", data.Question)
	assert.Equal(t, "openai", data.LLMUsed)
	assert.Equal(t, "openai", data.Model)
	assert.NotEmpty(t, data.Sources)
	assert.Contains(t, data.Answer, "Top match")
}

func TestHandleAsk_Text(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	require.NoError(t, HandleAsk(f.env, Args{Rest: []string{"anything?"}}))
	assert.Contains(t, f.out.String(), "Response from llama3")
}

func TestHandleAsk_Rejections(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	before := f.srv.TotalRequests()

	err := HandleAsk(f.env, Args{})
	require.Error(t, err)
	assert.Equal(t, auth.MsgEnterQuestion, auth.Message(err))

	err = HandleAsk(f.env, Args{Rest: []string{"-m", "gpt-9", "hello"}})
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	assert.Equal(t, before, f.srv.TotalRequests())
}

// =============================================================================
// STATUS
// =============================================================================

func TestHandleStatus_SignedIn(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	require.NoError(t, HandleStatus(f.env, Args{JSON: true}))
	var data StatusData
	decode(t, f.out.Bytes(), &data)

	assert.Equal(t, f.srv.URL, data.Backend.URL)
	assert.True(t, data.Backend.Reachable)
	assert.True(t, data.Session.TokenPresent)
	assert.True(t, data.Session.Valid)
	assert.False(t, data.Session.Expired)
	assert.Equal(t, testEmail, data.Session.Subject)
	assert.Equal(t, testEmail, data.Session.Email)
	assert.Equal(t, config.BackendMemory, data.Storage.Backend)
}

func TestHandleStatus_SignedOut(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, HandleStatus(f.env, Args{}))
	assert.Contains(t, f.out.String(), "signed out")
	assert.Contains(t, f.out.String(), strings.Repeat("-", 60))
	assert.Zero(t, f.srv.TotalRequests())
}

func TestInspectToken_Expired(t *testing.T) {
	f := newFixture(t)
	info, err := inspectToken(f.srv.IssueToken(testEmail, -time.Minute))
	require.NoError(t, err)
	assert.True(t, info.Expired(time.Now()))
	assert.Equal(t, testEmail, info.Subject)

	_, err = inspectToken("not-a-jwt")
	assert.Error(t, err)
}

// =============================================================================
// CHAT
// =============================================================================

// scriptedReader runs one step per prompt, then reports EOF.
type scriptedReader struct {
	steps  []func() (string, error)
	closed bool
}

func (r *scriptedReader) ReadInput(string) (string, error) {
	if len(r.steps) == 0 {
		return "", io.EOF
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	return step()
}

func (r *scriptedReader) Close() { r.closed = true }

func typeAfter(clock *session.ManualClock, idle time.Duration, line string) func() (string, error) {
	return func() (string, error) {
		clock.Advance(idle)
		return line, nil
	}
}

func (f *fixture) chat(t *testing.T, clock *session.ManualClock, steps ...func() (string, error)) (*scriptedReader, error) {
	t.Helper()
	reader := &scriptedReader{steps: steps}
	f.env.Clock = clock
	f.env.NewLineReader = func() LineReader { return reader }
	return reader, HandleChat(f.env, Args{})
}

func TestHandleChat_SignsOutAfterIdleLimit(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	clock := session.NewManualClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	reader, err := f.chat(t, clock,
		typeAfter(clock, time.Minute, "/model"),
		typeAfter(clock, session.IdleLimit, "are you there?"),
	)

	require.Error(t, err)
	assert.Equal(t, MsgSessionExpired, auth.Message(err))
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.True(t, reader.closed)
	assert.Empty(t, f.token(), "expiry signs out")
	assert.False(t, f.env.Client.HasAuthToken())
	assert.Contains(t, f.errOut.String(), "Signing out in 2m")
	assert.Zero(t, f.srv.Requests("POST /chat/query"), "the line typed after expiry is not sent")
	assert.Zero(t, clock.Pending(), "no timers left behind")
}

func TestHandleChat_InputKeepsSessionAlive(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	clock := session.NewManualClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	almost := session.IdleLimit - time.Second

	_, err := f.chat(t, clock,
		typeAfter(clock, almost, "/sources"),
		typeAfter(clock, almost, "what changed?"),
		typeAfter(clock, almost, "/quit"),
	)

	require.NoError(t, err)
	assert.NotEmpty(t, f.token())
	assert.Equal(t, 1, f.srv.Requests("POST /chat/query"))
	assert.Contains(t, f.out.String(), "Sources")
	assert.Contains(t, f.out.String(), "1 question(s) asked")
	assert.Zero(t, clock.Pending())
}

func TestHandleChat_LogoutCommand(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	clock := session.NewManualClock(time.Now())

	_, err := f.chat(t, clock, typeAfter(clock, 0, "/logout"))
	require.NoError(t, err)
	assert.Empty(t, f.token())
}

func TestHandleChat_RequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.chat(t, session.NewManualClock(time.Now()))
	require.Error(t, err)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

// =============================================================================
// CONFIG AND VERSION
// =============================================================================

func TestHandleConfig_SetGet(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "askmydocs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0600))

	var out bytes.Buffer
	args := Args{ConfigPath: path, Rest: []string{"set", "query.default_model", "openai"}}
	require.NoError(t, HandleConfig(&out, args))
	assert.Contains(t, out.String(), "query.default_model saved")

	out.Reset()
	args.Rest = []string{"get", "query.default_model"}
	require.NoError(t, HandleConfig(&out, args))
	assert.Equal(t, "openai\n", out.String())

	err := HandleConfig(&out, Args{ConfigPath: path, Rest: []string{"set", "query.default_model", "gpt-9"}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleConfig(&out, Args{ConfigPath: path, Rest: []string{"get", "api.nope"}})
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestHandleConfig_ShowRedactsSecrets(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "askmydocs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage":{"redis_password":"hunter2"}}`), 0600))

	var out bytes.Buffer
	require.NoError(t, HandleConfig(&out, Args{ConfigPath: path}))
	assert.NotContains(t, out.String(), "hunter2")
	assert.Contains(t, out.String(), "[REDACTED]")

	out.Reset()
	require.NoError(t, HandleConfig(&out, Args{ConfigPath: path, JSON: true}))
	assert.NotContains(t, out.String(), "hunter2")
	assert.True(t, json.Valid(out.Bytes()))
}

func TestHandleVersion_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, HandleVersion(&out, Args{JSON: true}))

	var data VersionData
	resp := decode(t, out.Bytes(), &data)
	assert.True(t, resp.Success)
	assert.Equal(t, Version, data.Version)
	assert.NotEmpty(t, data.GoVersion)
}
