// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for --json.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// JSONResponse is the envelope every command prints in JSON mode.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`

	// ErrorType classifies a failure, e.g. "session_error"
	ErrorType string `json:"error_type,omitempty"`

	// Details carries fields specific to ErrorType
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w with indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Print outputs the JSON response to stdout.
func (r *JSONResponse) Print() error {
	return r.Write(os.Stdout)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData is returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// SessionData is returned by login, register and logout.
type SessionData struct {
	Email     string `json:"email,omitempty"`
	LoggedIn  bool   `json:"logged_in"`
	Storage   string `json:"storage"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// UserData is returned by whoami.
type UserData struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MessageData carries a single confirmation message.
type MessageData struct {
	Message string `json:"message"`
}

// UploadData is returned by upload, one entry per file.
type UploadData struct {
	Files []UploadFileData `json:"files"`
}

// UploadFileData describes one uploaded file.
type UploadFileData struct {
	Path     string `json:"path"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// AnswerData is returned by ask.
type AnswerData struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Model    string       `json:"model"`
	LLMUsed  string       `json:"llm_used"`
	Sources  []SourceData `json:"sources"`
}

// SourceData is one supporting document.
type SourceData struct {
	DocID    string  `json:"doc_id"`
	Filename string  `json:"filename"`
	Content  string  `json:"content,omitempty"`
	Score    float64 `json:"relevance_score"`
}

// StatusData is returned by the status command.
type StatusData struct {
	Version string            `json:"version"`
	Backend StatusBackendInfo `json:"backend"`
	Storage StatusStorageInfo `json:"storage"`
	Session StatusSessionInfo `json:"session"`
}

// StatusBackendInfo describes the configured backend.
type StatusBackendInfo struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// StatusStorageInfo describes the token store.
type StatusStorageInfo struct {
	Backend string `json:"backend"`
	Path    string `json:"path,omitempty"`
}

// StatusSessionInfo describes the stored session.
type StatusSessionInfo struct {
	TokenPresent bool   `json:"token_present"`
	Subject      string `json:"subject,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
	Expired      bool   `json:"expired"`
	Email        string `json:"email,omitempty"`
	Valid        bool   `json:"valid"`
}

// ConfigValueData is returned by config get and set.
type ConfigValueData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}
