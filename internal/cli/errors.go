// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed CLI command with context.
type CommandError struct {
	Command string // e.g. "key", "config"
	Action  string // e.g. "set", "show"
	Err     error
}

func (e *CommandError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is invalid command-line usage.
type UsageError struct {
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	if e.Example == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s\nExample: %s", e.Reason, e.Example)
}

// ErrReplyFailed means the query completed with the apology message.
var ErrReplyFailed = errors.New("the request did not produce a reply")

// NewCommandError wraps err with the command and action that failed.
func NewCommandError(command, action string, err error) error {
	return &CommandError{Command: command, Action: action, Err: err}
}

// NewUsageError creates a usage error with an optional example.
func NewUsageError(reason, example string) error {
	return &UsageError{Reason: reason, Example: example}
}

// GetExitCode maps an error to the process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var cfgErr config.ValidateErrors
	var fieldErr config.ValidationError
	if errors.As(err, &cfgErr) || errors.As(err, &fieldErr) {
		return ExitConfigError
	}

	if errors.Is(err, session.ErrNoAPIKey) || errors.Is(err, perplexity.ErrMissingAPIKey) {
		return ExitAuthError
	}

	var reqErr *perplexity.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.StatusCode == 401 || reqErr.StatusCode == 403:
			return ExitAuthError
		case errors.Is(reqErr, context.DeadlineExceeded):
			return ExitTimeoutError
		default:
			return ExitNetworkError
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	return ExitGeneralError
}
