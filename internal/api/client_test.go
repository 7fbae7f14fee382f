// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmydocs/askmydocs-tui/internal/apitest"
)

// =============================================================================
// DEFAULT HEADER TESTS
// =============================================================================

func TestSetAuthToken_InstallsAndRemovesHeader(t *testing.T) {
	c := NewClient("http://localhost:8000")
	assert.False(t, c.HasAuthToken())

	c.SetAuthToken("abc")
	assert.True(t, c.HasAuthToken())
	assert.Equal(t, "Bearer abc", c.DefaultHeaders().Get("Authorization"))

	c.SetAuthToken("")
	assert.False(t, c.HasAuthToken())
	_, present := c.DefaultHeaders()["Authorization"]
	assert.False(t, present, "header must be deleted, not blanked")
}

func TestDefaultHeaders_ReturnsCopy(t *testing.T) {
	c := NewClient("http://localhost:8000")
	h := c.DefaultHeaders()
	h.Set("Authorization", "Bearer injected")
	assert.False(t, c.HasAuthToken())
}

func TestClients_DoNotShareHeaders(t *testing.T) {
	a := NewClient("http://localhost:8000")
	b := NewClient("http://localhost:8000")
	a.SetAuthToken("only-a")
	assert.False(t, b.HasAuthToken())
}

func TestNoAuthorizationHeaderAfterClearing(t *testing.T) {
	srv := apitest.New(t)
	c := NewClient(srv.URL)

	c.SetAuthToken("stale")
	c.SetAuthToken("")

	_, err := c.Register(context.Background(), NewUser{Name: "Ada", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	for _, route := range []string{"POST /auth/register", "POST /auth/login"} {
		for _, h := range srv.AuthHeaders(route) {
			assert.Empty(t, h, route)
		}
	}
}

func TestProtectedCallWithoutToken_SendsNothing(t *testing.T) {
	srv := apitest.New(t)
	c := NewClient(srv.URL)

	_, err := c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.SubmitQuery(context.Background(), "hello", "llama3")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.UploadDocument(context.Background(), "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Zero(t, srv.TotalRequests())
}

// =============================================================================
// ENDPOINT TESTS
// =============================================================================

func TestLoginThenCurrentUser(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Ada", "a@b.com", "secret1")
	c := NewClient(srv.URL)
	ctx := context.Background()

	tok, err := c.Login(ctx, Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)

	c.SetAuthToken(tok.AccessToken)
	me, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)
	assert.Equal(t, "a@b.com", me.Email)
	assert.Equal(t, []string{"Bearer " + tok.AccessToken}, srv.AuthHeaders("GET /auth/me"))
}

func TestLogin_InvalidCredentialsCarriesDetail(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Ada", "a@b.com", "secret1")
	c := NewClient(srv.URL)

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong!"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", Detail(err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Ada", "a@b.com", "secret1")
	c := NewClient(srv.URL)

	_, err := c.Register(context.Background(), NewUser{Name: "Other", Email: "a@b.com", Password: "secret2"})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", Detail(err))
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Ada", "a@b.com", "secret1")
	c := NewClient(srv.URL)
	ctx := context.Background()

	tok, err := c.Login(ctx, Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	c.SetAuthToken(tok.AccessToken)

	_, err = c.ChangePassword(ctx, "nope", "secret2")
	assert.Equal(t, "Current password is incorrect", Detail(err))

	ack, err := c.ChangePassword(ctx, "secret1", "secret2")
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully", ack.Message)

	_, err = c.Login(ctx, Credentials{Email: "a@b.com", Password: "secret2"})
	assert.NoError(t, err)
}

func TestUploadDocument_Multipart(t *testing.T) {
	var gotField, gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/", r.URL.Path)
		f, fh, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotField = "file"
		gotName = fh.Filename
		data, _ := io.ReadAll(f)
		gotBody = string(data)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"document_id": 7, "filename": fh.Filename, "blob_url": "local://uploads/" + fh.Filename,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetAuthToken("tok")
	res, err := c.UploadDocument(context.Background(), "/home/ada/notes/report.md", strings.NewReader("# Report"))
	require.NoError(t, err)

	assert.Equal(t, "file", gotField)
	assert.Equal(t, "report.md", gotName, "only the base name is sent")
	assert.Equal(t, "# Report", gotBody)
	assert.Equal(t, 7, res.DocumentID)
	assert.Equal(t, "report.md", res.Filename)
}

func TestAddDocumentAndQuery(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Ada", "a@b.com", "secret1")
	c := NewClient(srv.URL)
	ctx := context.Background()

	tok, err := c.Login(ctx, Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	c.SetAuthToken(tok.AccessToken)

	ack, err := c.AddDocument(ctx, Document{Title: "doc-1", Content: "The warranty lasts two years."})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", ack.ID)

	ans, err := c.SubmitQuery(ctx, "warranty", "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", ans.LLMUsed)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "doc-1", ans.Sources[0].DocID)
	assert.Greater(t, ans.Sources[0].RelevanceScore, 0.0)
}

func TestSubmitQuery_OmitsEmptyModel(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"answer":"ok","source_documents":[],"llm_used":"llama3"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetAuthToken("tok")
	_, err := c.SubmitQuery(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "hi", body["query"])
	_, hasModel := body["model"]
	assert.False(t, hasModel)
}

// =============================================================================
// ERROR MAPPING TESTS
// =============================================================================

func TestErrorDetails(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", 400, `{"detail":"Email already registered"}`, "Email already registered"},
		{"validation list", 422, `{"detail":[{"loc":["body","email"],"msg":"Field required"}]}`, "email: Field required"},
		{"no detail", 500, `{"error":"boom"}`, ""},
		{"not json", 502, `<html>Bad Gateway</html>`, ""},
		{"empty", 503, ``, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Login(context.Background(), Credentials{Email: "a", Password: "b"})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.detail, apiErr.Detail)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Login(context.Background(), Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "login", netErr.Op)
	assert.Empty(t, Detail(err))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithTimeout(50 * time.Millisecond)
	_, err := c.Login(context.Background(), Credentials{Email: "a", Password: "b"})
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestOversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", MaxResponseSize+1)))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "login")
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func TestWithHTTPClient_SendsThroughDoer(t *testing.T) {
	var got *http.Request
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		got = req
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"id":7,"name":"Ada","email":"ada@example.com"}`)),
		}, nil
	})

	c := NewClient("http://docs.internal").WithHTTPClient(doer)
	c.SetAuthToken("tok")
	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "http://docs.internal/auth/me", got.URL.String())
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestRequestID_PerRequest(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get(RequestIDHeader))
		w.Write([]byte(`{"access_token":"t"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	for i := 0; i < 2; i++ {
		_, err := c.Login(context.Background(), Credentials{Email: "a", Password: "b"})
		require.NoError(t, err)
	}
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestLogin_SendsEmptyName(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"access_token":"t"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "", "email": "a@b.com", "password": "secret1"}, body)
}
