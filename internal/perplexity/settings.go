// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package perplexity

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// =============================================================================
// MODELS
// =============================================================================

// Model identifies a Perplexity completion model.
type Model string

// Models offered by the settings selector.
const (
	ModelSonar             Model = "sonar"
	ModelSonarPro          Model = "sonar-pro"
	ModelSonarReasoning    Model = "sonar-reasoning"
	ModelSonarReasoningPro Model = "sonar-reasoning-pro"
)

// LegacyDefaultModel is the default model name older configurations shipped
// with. It is not served by the selector and is rejected by validation.
const LegacyDefaultModel Model = "sonar-medium"

// Models returns the selectable models in display order.
func Models() []Model {
	return []Model{ModelSonar, ModelSonarPro, ModelSonarReasoning, ModelSonarReasoningPro}
}

// Valid reports whether m is one of the selectable models.
func (m Model) Valid() bool {
	return slices.Contains(Models(), m)
}

// ParseModel returns the model named s or ErrUnknownModel.
func ParseModel(s string) (Model, error) {
	m := Model(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q (choose one of %s)", ErrUnknownModel, s, modelList())
	}
	return m, nil
}

func modelList() string {
	names := make([]string, 0, len(Models()))
	for _, m := range Models() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

// =============================================================================
// SEARCH FILTERS
// =============================================================================

// RecencyFilter limits search results to a time window.
type RecencyFilter string

// Recency windows accepted by the API. The zero value disables the filter.
const (
	RecencyNone  RecencyFilter = ""
	RecencyHour  RecencyFilter = "hour"
	RecencyDay   RecencyFilter = "day"
	RecencyWeek  RecencyFilter = "week"
	RecencyMonth RecencyFilter = "month"
)

// RecencyFilters returns the selectable recency windows, starting with none.
func RecencyFilters() []RecencyFilter {
	return []RecencyFilter{RecencyNone, RecencyHour, RecencyDay, RecencyWeek, RecencyMonth}
}

// ParseRecency parses a recency window name. "none", "any" and "" disable it.
func ParseRecency(s string) (RecencyFilter, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "none", "any":
		return RecencyNone, nil
	case "hour", "day", "week", "month":
		return RecencyFilter(v), nil
	default:
		return RecencyNone, fmt.Errorf("invalid recency filter %q (hour, day, week, month or none)", s)
	}
}

// MaxDomainFilters is the number of domains the API accepts in search_domain_filter.
const MaxDomainFilters = 3

// ParseDomainFilter splits a comma-separated domain list such as
// "example.com,-excluded.com". A leading "-" excludes a domain. Blank entries
// are dropped; more than MaxDomainFilters entries is an error.
func ParseDomainFilter(s string) ([]string, error) {
	var domains []string
	for _, part := range strings.Split(s, ",") {
		d := strings.TrimSpace(part)
		if d == "" || d == "-" {
			continue
		}
		domains = append(domains, d)
	}
	if len(domains) > MaxDomainFilters {
		return nil, fmt.Errorf("at most %d domains allowed, got %d", MaxDomainFilters, len(domains))
	}
	return domains, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds the options sent with every completion request.
// Zero-valued optional fields are omitted from the request body.
type Settings struct {
	Model                  Model         `toml:"model" json:"model" yaml:"model"`
	Temperature            float64       `toml:"temperature" json:"temperature" yaml:"temperature"`
	TopP                   float64       `toml:"top_p" json:"top_p" yaml:"top_p"`
	TopK                   int           `toml:"top_k" json:"top_k" yaml:"top_k"`
	PresencePenalty        float64       `toml:"presence_penalty" json:"presence_penalty" yaml:"presence_penalty"`
	FrequencyPenalty       float64       `toml:"frequency_penalty" json:"frequency_penalty" yaml:"frequency_penalty"`
	MaxTokens              int           `toml:"max_tokens" json:"max_tokens,omitempty" yaml:"max_tokens"`
	ReturnImages           bool          `toml:"return_images" json:"return_images,omitempty" yaml:"return_images"`
	ReturnRelatedQuestions bool          `toml:"return_related_questions" json:"return_related_questions,omitempty" yaml:"return_related_questions"`
	SearchDomainFilter     []string      `toml:"search_domain_filter" json:"search_domain_filter,omitempty" yaml:"search_domain_filter"`
	SearchRecencyFilter    RecencyFilter `toml:"search_recency_filter" json:"search_recency_filter,omitempty" yaml:"search_recency_filter"`

	// ResponseFormat is session-only and never persisted to config files.
	ResponseFormat ResponseFormat `toml:"-" json:"-" yaml:"-"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		Model:            ModelSonar,
		Temperature:      0.7,
		TopP:             0.9,
		TopK:             0,
		PresencePenalty:  0,
		FrequencyPenalty: 1,
	}
}

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	out := s
	if s.SearchDomainFilter != nil {
		out.SearchDomainFilter = slices.Clone(s.SearchDomainFilter)
	}
	return out
}

// Validate checks every field against the ranges the API accepts and
// returns all problems joined.
func (s Settings) Validate() error {
	var errs []error
	if !s.Model.Valid() {
		if s.Model == LegacyDefaultModel {
			errs = append(errs, fmt.Errorf("%w: %q is not offered by the model selector; choose one of %s",
				ErrUnknownModel, s.Model, modelList()))
		} else {
			errs = append(errs, fmt.Errorf("%w: %q (choose one of %s)", ErrUnknownModel, s.Model, modelList()))
		}
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be 0-2, got %g", s.Temperature))
	}
	if s.TopP < 0 || s.TopP > 1 {
		errs = append(errs, fmt.Errorf("top_p must be 0-1, got %g", s.TopP))
	}
	if s.TopK < 0 {
		errs = append(errs, fmt.Errorf("top_k must be >= 0, got %d", s.TopK))
	}
	if s.PresencePenalty < -2 || s.PresencePenalty > 2 {
		errs = append(errs, fmt.Errorf("presence_penalty must be -2-2, got %g", s.PresencePenalty))
	}
	if s.FrequencyPenalty < 0 || s.FrequencyPenalty > 2 {
		errs = append(errs, fmt.Errorf("frequency_penalty must be 0-2, got %g", s.FrequencyPenalty))
	}
	if s.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be >= 0, got %d", s.MaxTokens))
	}
	if len(s.SearchDomainFilter) > MaxDomainFilters {
		errs = append(errs, fmt.Errorf("search_domain_filter allows at most %d domains, got %d",
			MaxDomainFilters, len(s.SearchDomainFilter)))
	}
	if _, err := ParseRecency(string(s.SearchRecencyFilter)); err != nil {
		errs = append(errs, err)
	}
	if _, ok := s.ResponseFormat.(RegexFormat); ok && s.Model != ModelSonar {
		errs = append(errs, fmt.Errorf("regex output is only served by %s, not %s", ModelSonar, s.Model))
	}
	return errors.Join(errs...)
}
