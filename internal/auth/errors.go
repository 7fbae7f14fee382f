// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
)

// Kind classifies a controller failure.
type Kind string

const (
	// KindValidation is a local input problem; nothing was sent.
	KindValidation Kind = "validation"
	// KindAuth is a rejection of credentials or of the session token.
	KindAuth Kind = "auth"
	// KindNetwork means no response was received.
	KindNetwork Kind = "network"
	// KindBusy means the same form already has a request outstanding.
	KindBusy Kind = "busy"
	// KindBackend is any other non-2xx response.
	KindBackend Kind = "backend"
	// KindStorage means the token could not be persisted.
	KindStorage Kind = "storage"
)

// Error is the only error type returned by Controller. Message is display
// text; Cause keeps the underlying api or I/O error.
type Error struct {
	Kind    Kind
	Op      string
	Field   string
	Message string
	Cause   error
}

// Error returns the display message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// String includes the kind and operation, for logs.
func (e *Error) String() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func validation(op, field, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message returns the display text of err, or err.Error() for foreign errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
