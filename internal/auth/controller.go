// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/askmydocs/askmydocs-tui/internal/api"
	"github.com/askmydocs/askmydocs-tui/internal/logging"
	"github.com/askmydocs/askmydocs-tui/internal/router"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 6

// DefaultModel is used by Ask when no model is given.
const DefaultModel = "llama3"

// Display messages.
const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgLoginFailed      = "Login failed. Please check your credentials."
	MsgNameRequired     = "Name is required"
	MsgEmailRequired    = "Email is required"
	MsgPasswordTooShort = "Password must be at least 6 characters long"
	MsgPasswordMismatch = "Passwords do not match"
	MsgRegisterFailed   = "Registration failed. Please try again."

	MsgNewPasswordMismatch = "New passwords do not match"
	MsgNewPasswordTooShort = "New password must be at least 6 characters"
	MsgPasswordUpdated     = "Password updated successfully"
	MsgPasswordFailed      = "Failed to update password"

	MsgSelectFile      = "Please select a file"
	MsgUnsupportedFile = "Supported file types: .pdf .txt .md"
	MsgUploadFailed    = "Upload failed"
	MsgEnterText       = "Enter some text"
	MsgTextAdded       = "Text added for indexing"
	MsgTextFailed      = "Failed to add text"
	MsgEnterQuestion   = "Enter a question"
	MsgQueryFailed     = "Query failed"
	MsgProfileFailed   = "Failed to load user info"
	MsgBusy            = "Request already in progress"
	MsgSessionSave     = "Could not save session"
)

// UploadExtensions lists the file types the backend indexes.
var UploadExtensions = []string{".pdf", ".txt", ".md"}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Client is the subset of *api.Client the controller drives.
type Client interface {
	SetAuthToken(token string)
	Register(ctx context.Context, u api.NewUser) (*api.Token, error)
	Login(ctx context.Context, creds api.Credentials) (*api.Token, error)
	CurrentUser(ctx context.Context) (*api.User, error)
	ChangePassword(ctx context.Context, current, next string) (*api.Ack, error)
	UploadDocument(ctx context.Context, filename string, content io.Reader) (*api.UploadResult, error)
	AddDocument(ctx context.Context, doc api.Document) (*api.DocumentAck, error)
	SubmitQuery(ctx context.Context, text, model string) (*api.Answer, error)
}

// TokenStore persists the session token. *tokenstore.Store satisfies it.
type TokenStore interface {
	Save(token string) error
	Get() (string, bool)
	Clear() error
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(p router.Path)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(p router.Path)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(p router.Path) { f(p) }

type nopNavigator struct{}

func (nopNavigator) Navigate(router.Path) {}

// =============================================================================
// CONTROLLER
// =============================================================================

// Form identifies one submit action. At most one request per form is in
// flight at a time.
type Form string

const (
	FormLogin    Form = "login"
	FormRegister Form = "register"
	FormPassword Form = "change password"
	FormUpload   Form = "upload"
	FormText     Form = "add text"
	FormQuery    Form = "query"
)

// Controller orchestrates the session lifecycle.
type Controller struct {
	client Client
	store  TokenStore
	nav    Navigator
	logger *slog.Logger
	now    func() time.Time
	model  string

	mu   sync.Mutex
	busy map[Form]bool
}

// New creates a controller. nav may be nil.
func New(client Client, store TokenStore, nav Navigator) *Controller {
	if nav == nil {
		nav = nopNavigator{}
	}
	return &Controller{
		client: client,
		store:  store,
		nav:    nav,
		logger: logging.Discard(),
		now:    time.Now,
		model:  DefaultModel,
		busy:   make(map[Form]bool),
	}
}

// WithLogger sets the logger.
func (c *Controller) WithLogger(l *slog.Logger) *Controller {
	c.logger = logging.OrDiscard(l)
	return c
}

// WithDefaultModel sets the model Ask uses when none is given.
func (c *Controller) WithDefaultModel(model string) *Controller {
	if model != "" {
		c.model = model
	}
	return c
}

// WithNow overrides the clock used for generated document titles.
func (c *Controller) WithNow(now func() time.Time) *Controller {
	c.now = now
	return c
}

// WithNavigator replaces the navigator.
func (c *Controller) WithNavigator(nav Navigator) *Controller {
	if nav != nil {
		c.nav = nav
	}
	return c
}

// Busy reports whether form has a request outstanding.
func (c *Controller) Busy(form Form) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[form]
}

func (c *Controller) begin(form Form) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[form] {
		return nil, &Error{Kind: KindBusy, Op: string(form), Message: MsgBusy}
	}
	c.busy[form] = true
	return func() {
		c.mu.Lock()
		delete(c.busy, form)
		c.mu.Unlock()
	}, nil
}

// Restore installs the stored token on the client, or removes the header
// when none is stored. It reports whether a session is present.
func (c *Controller) Restore() bool {
	token, ok := c.store.Get()
	c.client.SetAuthToken(token)
	return ok
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Login authenticates, persists the token and navigates to the dashboard.
// On failure the token store is left untouched.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return validation(string(FormLogin), "", MsgFillAllFields)
	}

	done, err := c.begin(FormLogin)
	if err != nil {
		return err
	}
	defer done()

	tok, err := c.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return c.fail(FormLogin, MsgLoginFailed, true, err)
	}
	return c.establish(FormLogin, tok)
}

// Profile is the registration form.
type Profile struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Validate checks the fields in order: name, email, password length, then
// confirmation. Only the first problem is reported.
func (p Profile) Validate() error {
	op := string(FormRegister)
	switch {
	case strings.TrimSpace(p.Name) == "":
		return validation(op, "name", MsgNameRequired)
	case strings.TrimSpace(p.Email) == "":
		return validation(op, "email", MsgEmailRequired)
	case utf8.RuneCountInString(p.Password) < MinPasswordLength:
		return validation(op, "password", MsgPasswordTooShort)
	case p.Password != p.Confirm:
		return validation(op, "confirm", MsgPasswordMismatch)
	}
	return nil
}

// Register creates an account and signs in with the returned token.
func (c *Controller) Register(ctx context.Context, p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	done, err := c.begin(FormRegister)
	if err != nil {
		return err
	}
	defer done()

	tok, err := c.client.Register(ctx, api.NewUser{
		Name:     strings.TrimSpace(p.Name),
		Email:    strings.TrimSpace(p.Email),
		Password: p.Password,
	})
	if err != nil {
		return c.fail(FormRegister, MsgRegisterFailed, true, err)
	}
	return c.establish(FormRegister, tok)
}

func (c *Controller) establish(form Form, tok *api.Token) error {
	if err := c.store.Save(tok.AccessToken); err != nil {
		c.logger.Error("failed to persist session", "op", form, "error", err)
		return &Error{Kind: KindStorage, Op: string(form), Message: MsgSessionSave, Cause: err}
	}
	c.client.SetAuthToken(tok.AccessToken)
	c.logger.Info("session event", "event", "LOGIN", "via", form)
	c.nav.Navigate(router.Dashboard)
	return nil
}

// Logout clears the stored token and the Authorization header, then
// navigates to the login view. Calling it without a session is harmless.
// The returned error only reports a store failure; the header is cleared
// and navigation happens regardless.
func (c *Controller) Logout() error {
	err := c.store.Clear()
	if err != nil {
		c.logger.Error("failed to clear session", "error", err)
	}
	c.client.SetAuthToken("")
	c.logger.Info("session event", "event", "LOGOUT")
	c.nav.Navigate(router.Login)
	return err
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// Validate checks confirmation first, then length.
func (p PasswordChange) Validate() error {
	op := string(FormPassword)
	switch {
	case p.New != p.Confirm:
		return validation(op, "confirm", MsgNewPasswordMismatch)
	case utf8.RuneCountInString(p.New) < MinPasswordLength:
		return validation(op, "new", MsgNewPasswordTooShort)
	}
	return nil
}

// ChangePassword updates the account password. The session token is not
// touched. It returns the success message.
func (c *Controller) ChangePassword(ctx context.Context, p PasswordChange) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	done, err := c.begin(FormPassword)
	if err != nil {
		return "", err
	}
	defer done()

	ack, err := c.client.ChangePassword(ctx, p.Current, p.New)
	if err != nil {
		return "", c.fail(FormPassword, MsgPasswordFailed, true, err)
	}
	if ack.Message != "" {
		return ack.Message, nil
	}
	return MsgPasswordUpdated, nil
}

// CurrentUser loads the signed-in account.
func (c *Controller) CurrentUser(ctx context.Context) (*api.User, error) {
	u, err := c.client.CurrentUser(ctx)
	if err != nil {
		return nil, c.fail("current user", MsgProfileFailed, false, err)
	}
	return u, nil
}

// =============================================================================
// DOCUMENTS AND QUERIES
// =============================================================================

// Upload is a completed file upload.
type Upload struct {
	*api.UploadResult
	Message string
}

// UploadFile reads the file at path and uploads it.
func (c *Controller) UploadFile(ctx context.Context, path string) (*Upload, error) {
	op := string(FormUpload)
	if strings.TrimSpace(path) == "" {
		return nil, validation(op, "file", MsgSelectFile)
	}
	if !SupportedFile(path) {
		return nil, validation(op, "file", MsgUnsupportedFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Field: "file",
			Message: fmt.Sprintf("Cannot read %s", filepath.Base(path)), Cause: err}
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

// Upload sends content under filename.
func (c *Controller) Upload(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	if filename == "" || content == nil {
		return nil, validation(string(FormUpload), "file", MsgSelectFile)
	}

	done, err := c.begin(FormUpload)
	if err != nil {
		return nil, err
	}
	defer done()

	res, err := c.client.UploadDocument(ctx, filename, content)
	if err != nil {
		return nil, c.fail(FormUpload, MsgUploadFailed, true, err)
	}
	return &Upload{UploadResult: res, Message: "Uploaded: " + res.Filename}, nil
}

// SupportedFile reports whether path has an indexable extension.
func SupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range UploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// AddText submits raw text under a generated "doc-<unix millis>" title.
func (c *Controller) AddText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", validation(string(FormText), "text", MsgEnterText)
	}

	done, err := c.begin(FormText)
	if err != nil {
		return "", err
	}
	defer done()

	doc := api.Document{
		Title:   fmt.Sprintf("doc-%d", c.now().UnixMilli()),
		Content: text,
	}
	if _, err := c.client.AddDocument(ctx, doc); err != nil {
		return "", c.fail(FormText, MsgTextFailed, false, err)
	}
	return MsgTextAdded, nil
}

// Reply is an answered question.
type Reply struct {
	*api.Answer
	Model   string
	Message string
}

// Ask submits question with model, or the default model when empty.
func (c *Controller) Ask(ctx context.Context, question, model string) (*Reply, error) {
	if strings.TrimSpace(question) == "" {
		return nil, validation(string(FormQuery), "query", MsgEnterQuestion)
	}
	if model == "" {
		model = c.model
	}

	done, err := c.begin(FormQuery)
	if err != nil {
		return nil, err
	}
	defer done()

	ans, err := c.client.SubmitQuery(ctx, question, model)
	if err != nil {
		return nil, c.fail(FormQuery, MsgQueryFailed, false, err)
	}
	used := ans.LLMUsed
	if used == "" {
		used = model
	}
	return &Reply{Answer: ans, Model: used, Message: "Response from " + used}, nil
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// fail converts a client error into an *Error. showDetail lets the
// backend's reason replace fallback.
func (c *Controller) fail(form Form, fallback string, showDetail bool, err error) *Error {
	e := &Error{Kind: KindBackend, Op: string(form), Message: fallback, Cause: err}

	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden ||
			((form == FormLogin || form == FormRegister) && apiErr.Status < http.StatusInternalServerError) {
			e.Kind = KindAuth
		}
		if showDetail && apiErr.Detail != "" {
			e.Message = apiErr.Detail
		}
	case errors.Is(err, api.ErrNotAuthenticated):
		e.Kind = KindAuth
		if showDetail {
			e.Message = "Not authenticated"
		}
	case errors.Is(err, api.ErrNetwork), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		e.Kind = KindNetwork
	}

	c.logger.Warn("request failed", "op", form, "kind", e.Kind, "error", err)
	return e
}
