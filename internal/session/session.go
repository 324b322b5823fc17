// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/logging"
	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/storage"
)

// Errors returned by Begin and Submit. Nothing is appended when they occur.
var (
	ErrBusy       = errors.New("a request is already in progress")
	ErrNoAPIKey   = errors.New("no API key set")
	ErrEmptyInput = errors.New("empty input")
)

// State is the request lifecycle of a session.
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting"
	}
	return "idle"
}

// Completer performs a structured query. *perplexity.Client implements it.
type Completer interface {
	StructuredCompletion(ctx context.Context, query, apiKey string, s perplexity.Settings) (*perplexity.CompletionResult, error)
}

// Options configures New.
type Options struct {
	Completer   Completer
	Preferences *storage.Preferences

	// Settings are the initial request settings. Zero value means defaults.
	Settings perplexity.Settings

	// Timeout bounds each request. Zero means perplexity.DefaultTimeout.
	Timeout time.Duration

	Logger *zap.Logger
}

// Request is the snapshot of everything one exchange needs, taken by Begin
// so that later edits cannot affect an in-flight request.
type Request struct {
	Query    string
	APIKey   string
	Settings perplexity.Settings
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the state of one chat. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	conv    *model.Conversation
	state   State
	started time.Time
	related []string

	settings perplexity.Settings
	apiKey   string

	prefs     *storage.Preferences
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates an idle session with an empty conversation.
func New(opts Options) *Session {
	settings := opts.Settings
	if settings.Model == "" {
		settings = perplexity.DefaultSettings()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = perplexity.DefaultTimeout
	}
	return &Session{
		conv:      model.NewConversation(),
		settings:  settings.Clone(),
		prefs:     opts.Preferences,
		completer: opts.Completer,
		timeout:   timeout,
		logger:    logging.OrNop(opts.Logger).Named("session"),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether a request is outstanding.
func (s *Session) Loading() bool {
	return s.State() == StateAwaiting
}

// Elapsed returns how long the outstanding request has been running.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaiting {
		return 0
	}
	return time.Since(s.started)
}

// Timeout returns the per-request deadline.
func (s *Session) Timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// SetTimeout changes the per-request deadline. Non-positive values are ignored.
func (s *Session) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// =============================================================================
// SUBMISSION
// =============================================================================

// CanSubmit reports whether Begin would accept input.
func (s *Session) CanSubmit(input string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkSubmit(input) == nil
}

func (s *Session) checkSubmit(input string) error {
	switch {
	case s.state == StateAwaiting:
		return ErrBusy
	case s.apiKey == "":
		return ErrNoAPIKey
	case strings.TrimSpace(input) == "":
		return ErrEmptyInput
	}
	return nil
}

// Begin appends the trimmed input as a user message, clears the related
// questions and enters the awaiting state.
func (s *Session) Begin(input string) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSubmit(input); err != nil {
		return Request{}, err
	}

	query := strings.TrimSpace(input)
	s.conv.Append(model.NewUserMessage(query))
	s.related = nil
	s.state = StateAwaiting
	s.started = time.Now()

	return Request{
		Query:    query,
		APIKey:   s.apiKey,
		Settings: s.settings.Clone(),
	}, nil
}

// Execute sends req through the completer under the session timeout.
func (s *Session) Execute(ctx context.Context, req Request) (*perplexity.CompletionResult, error) {
	if s.completer == nil {
		return nil, errors.New("session has no completer")
	}
	ctx, cancel := context.WithTimeout(ctx, s.Timeout())
	defer cancel()

	s.logger.Debug("sending structured query",
		zap.String("model", string(req.Settings.Model)),
		zap.Int("query_len", len(req.Query)))
	return s.completer.StructuredCompletion(ctx, req.Query, req.APIKey, req.Settings)
}

// Complete records the outcome of the outstanding request and returns to
// idle. Any error, including a reply without choices, appends the fixed
// apology message instead of a reply.
func (s *Session) Complete(res *perplexity.CompletionResult, err error) *model.Message {
	var content string
	if err == nil {
		content, err = res.Content()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var elapsed time.Duration
	if s.state == StateAwaiting {
		elapsed = time.Since(s.started)
	}
	s.state = StateIdle

	if err != nil {
		s.logger.Error("request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		msg := model.NewErrorReply()
		s.conv.Append(msg)
		return msg
	}

	msg := model.NewStructuredReply(content, res.Citations)
	s.conv.Append(msg)
	if len(res.RelatedQuestions) > 0 {
		s.related = slices.Clone(res.RelatedQuestions)
	}
	s.logger.Info("reply received",
		zap.String("id", res.ID),
		zap.Int("citations", len(res.Citations)),
		zap.Int("total_tokens", res.Usage.TotalTokens),
		zap.Duration("elapsed", elapsed))
	return msg
}

// Submit runs a whole exchange: Begin, Execute, Complete. The returned
// error is only ever one of Begin's; request failures become the apology
// message.
func (s *Session) Submit(ctx context.Context, input string) (*model.Message, error) {
	req, err := s.Begin(input)
	if err != nil {
		return nil, err
	}
	res, err := s.Execute(ctx, req)
	return s.Complete(res, err), nil
}

// =============================================================================
// RELATED QUESTIONS
// =============================================================================

// RelatedQuestions returns the follow-ups offered with the last reply.
func (s *Session) RelatedQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.related)
}

// UseRelatedQuestion returns question i and clears the list. The caller
// puts the question into the input; nothing is submitted.
func (s *Session) UseRelatedQuestion(i int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.related) {
		return "", false
	}
	q := s.related[i]
	s.related = nil
	return q, true
}

// =============================================================================
// API KEY
// =============================================================================

// APIKey returns the key used for requests.
func (s *Session) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// HasAPIKey reports whether a key is set.
func (s *Session) HasAPIKey() bool {
	return s.APIKey() != ""
}

// UseAPIKey sets the key for this session without persisting it.
func (s *Session) UseAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = strings.TrimSpace(key)
}

// SetAPIKey sets the key and persists it. An empty key clears both.
func (s *Session) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if s.prefs != nil {
		if err := s.prefs.SaveAPIKey(key); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
	}
	s.UseAPIKey(key)
	s.logger.Info("api key updated", zap.String("fingerprint", perplexity.KeyFingerprint(key)))
	return nil
}

// LoadAPIKey reads the persisted key. A missing key leaves the current one.
func (s *Session) LoadAPIKey() error {
	if s.prefs == nil {
		return nil
	}
	key, err := s.prefs.APIKey()
	if err != nil {
		return fmt.Errorf("failed to load API key: %w", err)
	}
	if key != "" {
		s.UseAPIKey(key)
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns a copy of the current request settings.
func (s *Session) Settings() perplexity.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// SetSettings replaces the settings after validating them. Invalid
// settings are rejected and the previous ones kept.
func (s *Session) SetSettings(settings perplexity.Settings) error {
	if err := settings.Validate(); err != nil {
		s.logger.Warn("settings rejected", zap.Error(err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.Clone()
	return nil
}

// UpdateSettings applies fn to a copy of the settings and keeps the result
// if it validates.
func (s *Session) UpdateSettings(fn func(*perplexity.Settings)) error {
	next := s.Settings()
	fn(&next)
	return s.SetSettings(next)
}

// ApplyStructuredOutput parses a structured output choice ("none", "json"
// or "regex") and stores it in the settings. A schema or pattern that does
// not parse is rejected with a warning and the settings are unchanged.
func (s *Session) ApplyStructuredOutput(kind, raw string) error {
	format, err := perplexity.ParseStructuredOutput(kind, raw)
	if err != nil {
		s.logger.Warn("structured output rejected", zap.String("kind", kind), zap.Error(err))
		return err
	}
	return s.UpdateSettings(func(st *perplexity.Settings) {
		st.ResponseFormat = format
	})
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Messages returns a snapshot of the conversation.
func (s *Session) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Snapshot()
}

// Conversation returns a copy of the conversation for export.
func (s *Session) Conversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.conv
	c.Messages = s.conv.Snapshot()
	return &c
}

// AppendNotice adds a system message, used for command output.
func (s *Session) AppendNotice(text string) *model.Message {
	msg := model.NewSystemMessage(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Append(msg)
	return msg
}

// Clear empties the conversation and the related questions. An
// outstanding request still completes into the cleared conversation.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Clear()
	s.related = nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FormatDuration returns a short human-readable duration such as "4s" or "1m 5s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
