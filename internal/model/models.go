// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"

	"github.com/jeranaias/sonarchat/internal/perplexity"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes a selectable completion model for the settings panel.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID perplexity.Model `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Tier is "Search" or "Reasoning"
	Tier string `json:"tier"`

	// MaxTokens is the context window size
	MaxTokens int `json:"max_tokens"`

	// SupportsRegex is true for models that serve regex output constraints
	SupportsRegex bool `json:"supports_regex"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`
}

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// Models is the registry of selectable models keyed by ID.
var Models = map[perplexity.Model]ModelInfo{
	perplexity.ModelSonar: {
		ID:            perplexity.ModelSonar,
		Name:          "Sonar",
		Tier:          "Search",
		MaxTokens:     127072,
		SupportsRegex: true,
		Description:   "Lightweight search answers",
	},
	perplexity.ModelSonarPro: {
		ID:          perplexity.ModelSonarPro,
		Name:        "Sonar Pro",
		Tier:        "Search",
		MaxTokens:   200000,
		Description: "Deeper search with more citations",
	},
	perplexity.ModelSonarReasoning: {
		ID:          perplexity.ModelSonarReasoning,
		Name:        "Sonar Reasoning",
		Tier:        "Reasoning",
		MaxTokens:   127072,
		Description: "Step-by-step reasoning over search results",
	},
	perplexity.ModelSonarReasoningPro: {
		ID:          perplexity.ModelSonarReasoningPro,
		Name:        "Sonar Reasoning Pro",
		Tier:        "Reasoning",
		MaxTokens:   127072,
		Description: "Most thorough multi-step research",
	},
}

// GetModelInfo returns information about a model. Unknown IDs get a
// placeholder entry so callers can always display something.
func GetModelInfo(id perplexity.Model) ModelInfo {
	if info, ok := Models[id]; ok {
		return info
	}
	return ModelInfo{
		ID:          id,
		Name:        string(id),
		Tier:        "Unknown",
		Description: "Not offered by the model selector",
	}
}

// ListModels returns model info in selector order.
func ListModels() []ModelInfo {
	out := make([]ModelInfo, 0, len(Models))
	for _, id := range perplexity.Models() {
		out = append(out, Models[id])
	}
	return out
}

// FormatContextSize formats a token count as "128K" or "1M".
func FormatContextSize(tokens int) string {
	switch {
	case tokens >= 1000000:
		return fmt.Sprintf("%dM", tokens/1000000)
	case tokens >= 1000:
		return fmt.Sprintf("%dK", tokens/1000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

// Summary returns a one-line description such as
// "Sonar Pro (Search, 200K): Deeper search with more citations".
func (m ModelInfo) Summary() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteString(" (")
	b.WriteString(m.Tier)
	if m.MaxTokens > 0 {
		b.WriteString(", ")
		b.WriteString(FormatContextSize(m.MaxTokens))
	}
	b.WriteString(")")
	if m.Description != "" {
		b.WriteString(": ")
		b.WriteString(m.Description)
	}
	return b.String()
}
