// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest runs an in-process AskMyDocs backend for tests.
//
// The server implements the same routes, payloads and error details as the
// real service: bcrypt-hashed accounts, HS256 bearer tokens, uploads, text
// documents and a naive keyword "retrieval" for queries. It also counts
// requests and can hold or fail individual routes.
//
//	srv := apitest.New(t)
//	srv.AddUser("Ada", "a@b.com", "secret1")
//	client := api.NewClient(srv.URL)
package apitest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id       int
	name     string
	email    string
	password []byte
}

// StoredDoc is a document the server has accepted.
type StoredDoc struct {
	ID       string
	Filename string
	Content  string
	Owner    string
}

type failure struct {
	status int
	detail string
}

type hold struct {
	arrived chan struct{}
	release chan struct{}
}

// Server is a fake AskMyDocs backend listening on a loopback port.
type Server struct {
	*httptest.Server

	secret   []byte
	tokenTTL time.Duration

	mu       sync.Mutex
	users    map[string]*user
	nextID   int
	docs     []StoredDoc
	requests map[string]int
	authSeen map[string][]string
	failures map[string]failure
	holds    map[string]*hold
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := NewServer()
	t.Cleanup(s.Close)
	return s
}

// NewServer starts a server; the caller must Close it.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:   []byte("apitest-secret"),
		tokenTTL: time.Hour,
		users:    make(map[string]*user),
		requests: make(map[string]int),
		authSeen: make(map[string][]string),
		failures: make(map[string]failure),
		holds:    make(map[string]*hold),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record, s.intercept)

	auth := r.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.GET("/me", s.requireUser, s.me)
	auth.PUT("/change-password", s.requireUser, s.changePassword)

	r.POST("/upload/", s.requireUser, s.upload)

	chat := r.Group("/chat", s.requireUser)
	chat.POST("/add_document", s.addDocument)
	chat.POST("/query", s.query)

	return r
}

// =============================================================================
// TEST CONTROLS
// =============================================================================

// AddUser creates an account directly.
func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name, email, password string) *user {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.nextID++
	u := &user{id: s.nextID, name: name, email: email, password: hash}
	s.users[email] = u
	return u
}

// IssueToken signs a token for email, valid for ttl.
func (s *Server) IssueToken(email string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// Requests returns how many times "METHOD /path" was called.
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// TotalRequests returns the number of requests received on any route.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.requests {
		n += c
	}
	return n
}

// AuthHeaders returns the Authorization header of every call to route, in
// order. Requests without the header record "".
func (s *Server) AuthHeaders(route string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authSeen[route]...)
}

// Documents returns every stored document.
func (s *Server) Documents() []StoredDoc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StoredDoc(nil), s.docs...)
}

// FailNext makes the next call to route answer status with detail. An empty
// detail sends a body without one.
func (s *Server) FailNext(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Hold parks the next call to route until release is called. arrived is
// closed once the call is parked.
func (s *Server) Hold(route string) (arrived <-chan struct{}, release func()) {
	h := &hold{arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.holds[route] = h
	s.mu.Unlock()

	var once sync.Once
	return h.arrived, func() { once.Do(func() { close(h.release) }) }
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func routeKey(c *gin.Context) string {
	return c.Request.Method + " " + c.Request.URL.Path
}

func (s *Server) record(c *gin.Context) {
	key := routeKey(c)
	s.mu.Lock()
	s.requests[key]++
	s.authSeen[key] = append(s.authSeen[key], c.GetHeader("Authorization"))
	s.mu.Unlock()
	c.Next()
}

func (s *Server) intercept(c *gin.Context) {
	key := routeKey(c)

	s.mu.Lock()
	h := s.holds[key]
	delete(s.holds, key)
	f, failing := s.failures[key]
	delete(s.failures, key)
	s.mu.Unlock()

	if h != nil {
		close(h.arrived)
		select {
		case <-h.release:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	if failing {
		if f.detail == "" {
			c.AbortWithStatusJSON(f.status, gin.H{})
			return
		}
		abort(c, f.status, f.detail)
		return
	}
	c.Next()
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// requireUser mirrors the backend's bearer dependency: a missing header is
// 403, a bad or expired token is 401.
func (s *Server) requireUser(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abort(c, http.StatusForbidden, "Not authenticated")
		return
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		abort(c, http.StatusForbidden, "Invalid authentication credentials")
		return
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.Subject == "" {
		abort(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	s.mu.Lock()
	u := s.users[claims.Subject]
	s.mu.Unlock()
	if u == nil {
		abort(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.Set("user", u)
	c.Next()
}

func currentUser(c *gin.Context) *user {
	return c.MustGet("user").(*user)
}

// =============================================================================
// HANDLERS
// =============================================================================

type userBody struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// bindUser enforces the shared user schema: all three fields must be present.
func bindUser(c *gin.Context) (name, email, password string, ok bool) {
	var body userBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusUnprocessableEntity, "invalid JSON body")
		return "", "", "", false
	}
	var missing []gin.H
	for field, v := range map[string]*string{"name": body.Name, "email": body.Email, "password": body.Password} {
		if v == nil {
			missing = append(missing, gin.H{"loc": []string{"body", field}, "msg": "Field required"})
		}
	}
	if len(missing) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": missing})
		return "", "", "", false
	}
	return *body.Name, *body.Email, *body.Password, true
}

func (s *Server) register(c *gin.Context) {
	name, email, password, ok := bindUser(c)
	if !ok {
		return
	}

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		abort(c, http.StatusBadRequest, "Email already registered")
		return
	}
	s.addUserLocked(name, email, password)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"access_token": s.IssueToken(email, s.tokenTTL), "token_type": "bearer"})
}

func (s *Server) login(c *gin.Context) {
	_, email, password, ok := bindUser(c)
	if !ok {
		return
	}

	var hash []byte
	s.mu.Lock()
	if u := s.users[email]; u != nil {
		hash = u.password
	}
	s.mu.Unlock()
	if hash == nil || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		abort(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": s.IssueToken(email, s.tokenTTL), "token_type": "bearer"})
}

func (s *Server) me(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"id": u.id, "name": u.name, "email": u.email})
}

func (s *Server) changePassword(c *gin.Context) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	current, next := body["current_password"], body["new_password"]
	if current == "" || next == "" {
		abort(c, http.StatusBadRequest, "Current and new passwords are required")
		return
	}

	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if bcrypt.CompareHashAndPassword(u.password, []byte(current)) != nil {
		abort(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.MinCost)
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	u.password = hash
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (s *Server) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"body", "file"}, "msg": "Field required"},
		}})
		return
	}

	content := ""
	switch strings.ToLower(path.Ext(fh.Filename)) {
	case ".txt", ".md":
		f, err := fh.Open()
		if err != nil {
			abort(c, http.StatusInternalServerError, err.Error())
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			abort(c, http.StatusInternalServerError, err.Error())
			return
		}
		content = string(data)
	}

	u := currentUser(c)
	s.mu.Lock()
	id := len(s.docs) + 1
	s.docs = append(s.docs, StoredDoc{ID: fmt.Sprint(id), Filename: fh.Filename, Content: content, Owner: u.email})
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"document_id": id,
		"filename":    fh.Filename,
		"blob_url":    "local://uploads/" + fh.Filename,
	})
}

func (s *Server) addDocument(c *gin.Context) {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Title == "" {
		abort(c, http.StatusUnprocessableEntity, "title and content are required")
		return
	}

	u := currentUser(c)
	s.mu.Lock()
	s.docs = append(s.docs, StoredDoc{ID: body.Title, Filename: body.Title, Content: body.Content, Owner: u.email})
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"id": body.Title, "title": body.Title, "content": body.Content})
}

func (s *Server) query(c *gin.Context) {
	var body struct {
		Query string `json:"query"`
		Model string `json:"model"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		abort(c, http.StatusBadRequest, "Query cannot be empty")
		return
	}
	model := body.Model
	if model == "" {
		model = "llama3"
	}

	sources := s.search(body.Query)
	answer := "I could not find anything about that in your documents."
	if len(sources) > 0 {
		answer = fmt.Sprintf("Found %d relevant document(s). Top match: **%s**", len(sources), sources[0]["filename"])
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer, "source_documents": sources, "llm_used": model})
}

// search ranks stored documents by how many query words they contain.
func (s *Server) search(q string) []gin.H {
	words := strings.Fields(strings.ToLower(q))

	s.mu.Lock()
	defer s.mu.Unlock()

	var hits []gin.H
	for _, d := range s.docs {
		text := strings.ToLower(d.Content)
		matched := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, gin.H{
			"doc_id":          d.ID,
			"filename":        d.Filename,
			"content":         d.Content,
			"relevance_score": float64(matched) / float64(len(words)),
		})
	}
	return hits
}
