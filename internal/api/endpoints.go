// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, u NewUser) (*Token, error) {
	req, err := jsonRequest("register", http.MethodPost, "/auth/register", u, false)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := c.do(ctx, req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Token, error) {
	body := loginBody{Email: creds.Email, Password: creds.Password}
	req, err := jsonRequest("login", http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := c.do(ctx, req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// CurrentUser returns the profile the installed token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	req, err := jsonRequest("me", http.MethodGet, "/auth/me", nil, true)
	if err != nil {
		return nil, err
	}
	var u User
	if err := c.do(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword replaces the account password. The session token stays valid.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (*Ack, error) {
	body := changePasswordBody{CurrentPassword: current, NewPassword: next}
	req, err := jsonRequest("change password", http.MethodPut, "/auth/change-password", body, true)
	if err != nil {
		return nil, err
	}
	var ack Ack
	if err := c.do(ctx, req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// UploadDocument sends content as the multipart field "file".
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("upload: failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	req := request{
		op:          "upload",
		method:      http.MethodPost,
		path:        "/upload/",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		protected:   true,
		timeout:     c.uploadTimeout,
	}
	var res UploadResult
	if err := c.do(ctx, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AddDocument submits raw text for indexing.
func (c *Client) AddDocument(ctx context.Context, doc Document) (*DocumentAck, error) {
	req, err := jsonRequest("add document", http.MethodPost, "/chat/add_document", doc, true)
	if err != nil {
		return nil, err
	}
	var ack DocumentAck
	if err := c.do(ctx, req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// SubmitQuery asks a question about the indexed documents. model may be
// empty to let the backend choose.
func (c *Client) SubmitQuery(ctx context.Context, text, model string) (*Answer, error) {
	req, err := jsonRequest("query", http.MethodPost, "/chat/query", queryBody{Query: text, Model: model}, true)
	if err != nil {
		return nil, err
	}
	var ans Answer
	if err := c.do(ctx, req, &ans); err != nil {
		return nil, err
	}
	return &ans, nil
}
