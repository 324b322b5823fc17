// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package perplexity

import (
	"errors"
	"fmt"
)

// Error variables for client and settings failures.
var (
	// ErrMissingAPIKey indicates a request was attempted without a credential.
	ErrMissingAPIKey = errors.New("perplexity API key not configured")

	// ErrNoChoices indicates a completion envelope carried no choices.
	ErrNoChoices = errors.New("completion has no choices")

	// ErrInvalidSchema indicates a user-supplied JSON schema failed to parse.
	ErrInvalidSchema = errors.New("invalid JSON schema")

	// ErrInvalidRegex indicates a user-supplied regex constraint failed to compile.
	ErrInvalidRegex = errors.New("invalid regex")

	// ErrUnknownModel indicates the model is not one of the offered models.
	ErrUnknownModel = errors.New("unknown model")
)

// RequestError is returned for any failed completion request: a non-success
// HTTP status, a transport failure, or an undecodable success body.
type RequestError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// StatusText is the transport status text ("Unauthorized", "Too Many Requests").
	StatusText string

	// Err is the underlying cause for transport and decode failures.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	text := e.StatusText
	if text == "" && e.Err != nil {
		text = e.Err.Error()
	}
	return fmt.Sprintf("API request failed: %s", text)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the server signalled an overload or rate limit.
// The client never retries; callers may use this to word a message.
func (e *RequestError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
