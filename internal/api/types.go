// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// Credentials are sent to /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewUser is sent to /auth/register.
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginBody mirrors the backend's shared user schema, which requires name
// even for login.
type loginBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is returned by register and login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the current account profile.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UploadResult acknowledges an uploaded file.
type UploadResult struct {
	DocumentID int    `json:"document_id"`
	Filename   string `json:"filename"`
	BlobURL    string `json:"blob_url"`
}

// Document is raw text submitted for indexing.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocumentAck acknowledges an indexed text document.
type DocumentAck struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SourceDocument is one retrieval hit backing an answer.
type SourceDocument struct {
	DocID          string  `json:"doc_id"`
	Filename       string  `json:"filename"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Answer is the result of a query.
type Answer struct {
	Answer  string           `json:"answer"`
	Sources []SourceDocument `json:"source_documents"`
	LLMUsed string           `json:"llm_used"`
}

// Ack is a plain acknowledgment message.
type Ack struct {
	Message string `json:"message"`
}

type queryBody struct {
	Query string `json:"query"`
	Model string `json:"model,omitempty"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
