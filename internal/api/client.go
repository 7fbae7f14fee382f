// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askmydocs/askmydocs-tui/internal/logging"
)

const (
	// DefaultTimeout bounds auth, query and text requests.
	DefaultTimeout = 30 * time.Second

	// DefaultUploadTimeout bounds multipart uploads.
	DefaultUploadTimeout = 5 * time.Minute

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024

	// RequestIDHeader correlates client and backend logs.
	RequestIDHeader = "X-Request-ID"
)

// HTTPDoer is the transport a Client sends through. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// sharedHTTPClient pools connections across Client instances. Timeouts are
// applied per request through the context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Client talks to one AskMyDocs backend.
type Client struct {
	baseURL       *url.URL
	http          HTTPDoer
	timeout       time.Duration
	uploadTimeout time.Duration
	logger        *slog.Logger

	mu      sync.RWMutex
	headers http.Header
}

// NewClient creates a client for baseURL. An unparsable URL surfaces as an
// error on the first request.
func NewClient(baseURL string) *Client {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		u = &url.URL{Opaque: baseURL}
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")

	return &Client{
		baseURL:       u,
		http:          sharedHTTPClient,
		timeout:       DefaultTimeout,
		uploadTimeout: DefaultUploadTimeout,
		logger:        logging.Discard(),
		headers:       headers,
	}
}

// WithHTTPClient replaces the transport.
func (c *Client) WithHTTPClient(h HTTPDoer) *Client {
	c.http = h
	return c
}

// WithTimeout sets the timeout for non-upload requests.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// WithUploadTimeout sets the timeout for uploads.
func (c *Client) WithUploadTimeout(d time.Duration) *Client {
	if d > 0 {
		c.uploadTimeout = d
	}
	return c
}

// WithLogger sets the request logger.
func (c *Client) WithLogger(l *slog.Logger) *Client {
	c.logger = logging.OrDiscard(l)
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// =============================================================================
// DEFAULT HEADERS
// =============================================================================

// SetAuthToken installs "Authorization: Bearer <token>" on every later
// request. An empty token removes the header entirely.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.headers.Del("Authorization")
		return
	}
	c.headers.Set("Authorization", "Bearer "+token)
}

// HasAuthToken reports whether a bearer header is installed.
func (c *Client) HasAuthToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Get("Authorization") != ""
}

// DefaultHeaders returns a copy of the headers sent with every request.
func (c *Client) DefaultHeaders() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// =============================================================================
// Request/Response Logging (without sensitive data)
// =============================================================================

// logResponse never logs headers or bodies; both may carry credentials.
func (c *Client) logResponse(req *http.Request, status int, duration time.Duration, err error) {
	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(RequestIDHeader),
		"duration", duration.Round(time.Millisecond),
	}
	if err != nil {
		c.logger.Warn("api request failed", append(attrs, "err", err)...)
		return
	}
	c.logger.Debug("api request", append(attrs, "status", status)...)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	protected   bool
	timeout     time.Duration
}

// jsonRequest encodes v as the request body.
func jsonRequest(op, method, path string, v interface{}, protected bool) (request, error) {
	r := request{op: op, method: method, path: path, protected: protected}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return r, fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return r, nil
}

// do sends r and decodes a 2xx JSON response into out.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	headers := c.DefaultHeaders()
	if r.protected && headers.Get("Authorization") == "" {
		return fmt.Errorf("%s: %w", r.op, ErrNotAuthenticated)
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath(r.path)
	// JoinPath drops a trailing slash the backend routes on.
	if strings.HasSuffix(r.path, "/") && !strings.HasSuffix(endpoint.Path, "/") {
		endpoint.Path += "/"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint.String(), r.body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", r.op, err)
	}
	req.Header = headers
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logResponse(req, 0, time.Since(start), err)
		return &NetworkError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()
	c.logResponse(req, resp.StatusCode, time.Since(start), nil)

	body, err := readResponse(resp)
	switch {
	case errors.Is(err, ErrResponseTooLarge):
		return fmt.Errorf("%s: %w", r.op, err)
	case err != nil:
		return &NetworkError{Op: r.op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: parseDetail(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to parse response: %w", r.op, err)
	}
	return nil
}

// readResponse reads at most MaxResponseSize bytes.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}
