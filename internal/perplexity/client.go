// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package perplexity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Configuration constants for the Perplexity API.
const (
	// DefaultBaseURL is the base URL of the Perplexity API.
	DefaultBaseURL = "https://api.perplexity.ai"

	// CompletionsPath is the chat-completions endpoint below the base URL.
	CompletionsPath = "/chat/completions"

	// DefaultTimeout bounds a whole request when the caller's context has no deadline.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum accepted response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	userAgent = "sonarchat/0.1.0"
)

// apiErrorResponse is the error body the API returns alongside non-2xx statuses.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// chatRequest is the request body: settings flattened next to the messages.
type chatRequest struct {
	Settings
	Messages       []Message           `json:"messages"`
	Stream         bool                `json:"stream"`
	ResponseFormat *responseFormatWire `json:"response_format,omitempty"`
}

// Client talks to the chat-completions endpoint. It holds no credential;
// the key is supplied per call. A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for DefaultBaseURL.
func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithTimeout sets the HTTP client timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger.Named("perplexity")
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// KeyFingerprint returns a short SHA-256 fingerprint of key for logs.
// SECURITY: Never exposes any part of the key itself.
func KeyFingerprint(key string) string {
	if key == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:4])
}

// MaskKey returns a display form of key that reveals only its length and fingerprint.
func MaskKey(key string) string {
	if key == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(key), KeyFingerprint(key))
}

// ChatCompletion sends messages with settings s and returns the decoded envelope.
//
// Exactly one HTTP request is made. Streaming is always disabled. Any
// non-success status, transport failure or undecodable body yields a
// *RequestError.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, apiKey string, s Settings) (*CompletionResult, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody := chatRequest{
		Settings: s,
		Messages: messages,
		Stream:   false,
	}
	if s.ResponseFormat != nil {
		reqBody.ResponseFormat = s.ResponseFormat.wire()
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + CompletionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, apiKey)

	c.logger.Debug("api request",
		zap.String("url", url),
		zap.String("model", string(s.Model)),
		zap.Int("messages", len(messages)),
		zap.String("format", FormatKind(s.ResponseFormat)),
		zap.String("key", KeyFingerprint(apiKey)))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api transport failure", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, &RequestError{StatusText: transportText(ctx, err), Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	body, err := readResponse(resp)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, StatusText: statusText(resp), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleErrorResponse(resp, body)
	}

	var result CompletionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			StatusText: "invalid response body",
			Err:        fmt.Errorf("failed to parse response: %w", err),
		}
	}
	return &result, nil
}

// setHeaders sets the headers every API request carries.
func setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts a non-success response into a *RequestError.
// The API's error message, when present, is logged but the returned error
// keeps the transport status text.
func (c *Client) handleErrorResponse(resp *http.Response, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		c.logger.Warn("api error response",
			zap.Int("status", resp.StatusCode),
			zap.String("type", apiErr.Error.Type),
			zap.String("message", apiErr.Error.Message))
	} else {
		c.logger.Warn("api error response", zap.Int("status", resp.StatusCode))
	}
	return &RequestError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
}

// statusText extracts "Not Found" from a "404 Not Found" status line.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// transportText names a transport failure the way a status line would.
func transportText(ctx context.Context, err error) string {
	switch ctx.Err() {
	case context.Canceled:
		return "request cancelled"
	case context.DeadlineExceeded:
		return "request timed out"
	}
	return "network error: " + err.Error()
}
