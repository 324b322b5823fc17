// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvelope = `{
	"id": "cmpl-1",
	"model": "sonar",
	"object": "chat.completion",
	"created": 1700000000,
	"citations": ["https://a.test", "https://b.test"],
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "hello [1]"},
		"delta": {"role": "assistant", "content": ""}
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	"related_questions": ["why?"]
}`

// =============================================================================
// REQUEST SHAPE TESTS
// =============================================================================

func TestChatCompletion_RequestShape(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, CompletionsPath, r.URL.Path)
		assert.Equal(t, "Bearer pplx-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testEnvelope))
	}))
	defer server.Close()

	s := DefaultSettings()
	s.SearchDomainFilter = []string{"example.com", "-spam.test"}
	s.SearchRecencyFilter = RecencyWeek

	client := NewClient().WithBaseURL(server.URL + "/")
	res, err := client.ChatCompletion(context.Background(),
		[]Message{NewUserMessage("hi")}, "pplx-test", s)
	require.NoError(t, err)

	assert.Equal(t, "sonar", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.InDelta(t, 0.7, got["temperature"], 1e-9)
	assert.InDelta(t, 0.9, got["top_p"], 1e-9)
	assert.InDelta(t, 1.0, got["frequency_penalty"], 1e-9)
	assert.Equal(t, "week", got["search_recency_filter"])
	assert.Equal(t, []any{"example.com", "-spam.test"}, got["search_domain_filter"])
	assert.NotContains(t, got, "response_format")
	assert.NotContains(t, got, "max_tokens")
	assert.Len(t, got["messages"], 1)

	content, err := res.Content()
	require.NoError(t, err)
	assert.Equal(t, "hello [1]", content)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, res.Citations)
	assert.Equal(t, []string{"why?"}, res.RelatedQuestions)
	assert.Equal(t, 30, res.Usage.TotalTokens)
}

func TestChatCompletion_RegexFormat(t *testing.T) {
	var got struct {
		ResponseFormat struct {
			Type  string `json:"type"`
			Regex struct {
				Regex string `json:"regex"`
			} `json:"regex"`
			JSONSchema json.RawMessage `json:"json_schema"`
		} `json:"response_format"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(testEnvelope))
	}))
	defer server.Close()

	s := DefaultSettings()
	s.ResponseFormat = RegexFormat{Pattern: `\d+`}
	_, err := NewClient().WithBaseURL(server.URL).
		ChatCompletion(context.Background(), []Message{NewUserMessage("n")}, "k", s)
	require.NoError(t, err)

	assert.Equal(t, "regex", got.ResponseFormat.Type)
	assert.Equal(t, `\d+`, got.ResponseFormat.Regex.Regex)
	assert.Empty(t, got.ResponseFormat.JSONSchema)
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestChatCompletion_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_api_key"}}`))
	}))
	defer server.Close()

	_, err := NewClient().WithBaseURL(server.URL).
		ChatCompletion(context.Background(), []Message{NewUserMessage("hi")}, "k", DefaultSettings())
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "Unauthorized", reqErr.StatusText)
	assert.Equal(t, "API request failed: Unauthorized", err.Error())
	assert.False(t, reqErr.Temporary())
}

func TestChatCompletion_NoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient().WithBaseURL(server.URL).
		ChatCompletion(context.Background(), []Message{NewUserMessage("hi")}, "k", DefaultSettings())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, reqErr.Temporary())
	assert.Equal(t, int32(1), calls.Load())
}

func TestChatCompletion_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient().WithBaseURL(url).
		ChatCompletion(context.Background(), []Message{NewUserMessage("hi")}, "k", DefaultSettings())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.StatusCode)
	assert.NotNil(t, reqErr.Unwrap())
}

func TestChatCompletion_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient().WithBaseURL(server.URL).
		ChatCompletion(ctx, []Message{NewUserMessage("hi")}, "k", DefaultSettings())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "request timed out", reqErr.StatusText)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChatCompletion_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, err := NewClient().WithBaseURL(server.URL).
		ChatCompletion(context.Background(), []Message{NewUserMessage("hi")}, "k", DefaultSettings())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusOK, reqErr.StatusCode)
}

func TestChatCompletion_MissingKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := NewClient().WithBaseURL(server.URL).
		ChatCompletion(context.Background(), nil, "   ", DefaultSettings())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, calls.Load())
}

func TestCompletionResult_ContentNoChoices(t *testing.T) {
	_, err := (&CompletionResult{}).Content()
	assert.ErrorIs(t, err, ErrNoChoices)

	var nilResult *CompletionResult
	_, err = nilResult.Content()
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "[not set]", MaskKey(""))
	masked := MaskKey("pplx-secret-value")
	assert.NotContains(t, masked, "secret")
	assert.Contains(t, masked, KeyFingerprint("pplx-secret-value"))
	assert.Len(t, KeyFingerprint("x"), 8)
}
