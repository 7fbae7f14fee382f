// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for CLI commands.
//
// Handlers always return errors and never print them; main displays the
// error once and exits with GetExitCode.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/askmydocs/askmydocs-tui/internal/api"
	"github.com/askmydocs/askmydocs-tui/internal/auth"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a missing, rejected or expired session
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "login", "config")
	Action  string // Action being performed (e.g., "save", "load")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "file", "config key")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON error response in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(w, command, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// DisplayErrorJSON writes err as a JSON error response. Type-specific
// fields go under details.
func DisplayErrorJSON(w io.Writer, command string, err error) {
	resp := NewJSONErrorResponse(command, err)
	details := map[string]interface{}{}

	var (
		ae  *auth.Error
		ce  *CommandError
		ve  *ValidationError
		nfe *NotFoundError
	)
	switch {
	case errors.As(err, &ae):
		resp.ErrorType = "session_error"
		details["kind"] = string(ae.Kind)
		if ae.Field != "" {
			details["field"] = ae.Field
		}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			details["status"] = apiErr.Status
		}
	case errors.As(err, &ve):
		resp.ErrorType = "validation_error"
		details["field"] = ve.Field
		details["value"] = ve.Value
		details["reason"] = ve.Reason
		if ve.Example != "" {
			details["example"] = ve.Example
		}
	case errors.As(err, &nfe):
		resp.ErrorType = "not_found_error"
		details["resource"] = nfe.Resource
		details["id"] = nfe.ID
	case errors.As(err, &ce):
		resp.ErrorType = "command_error"
		details["action"] = ce.Action
		details["reason"] = ce.Reason
		if ce.Err != nil {
			details["underlying_error"] = ce.Err.Error()
		}
	default:
		resp.ErrorType = "generic_error"
	}

	if len(details) > 0 {
		resp.Details = details
	}
	_ = resp.Write(w)
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ae *auth.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case auth.KindValidation:
			return ExitUsageError
		case auth.KindAuth:
			return ExitAuthError
		case auth.KindNetwork:
			if errors.Is(err, context.DeadlineExceeded) {
				return ExitTimeoutError
			}
			return ExitNetworkError
		}
		return ExitGeneralError
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ExitUsageError
	}
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return ExitNotFoundError
	}
	var ce *CommandError
	if errors.As(err, &ce) && ce.Command == "config" {
		return ExitConfigError
	}

	switch {
	case errors.Is(err, api.ErrNotAuthenticated), errors.Is(err, api.ErrUnauthorized):
		return ExitAuthError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.Is(err, api.ErrNetwork):
		return ExitNetworkError
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "config") {
		return ExitConfigError
	}
	return ExitGeneralError
}
