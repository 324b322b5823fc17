// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sonarchat/internal/perplexity"
)

func focus(t *testing.T, p *SettingsPanel, key string) {
	t.Helper()
	for range settingsFields {
		if p.Focused() == key {
			return
		}
		p.Down()
	}
	require.FailNow(t, "no settings field "+key)
}

func TestSettingsPanel_StepsWithinRange(t *testing.T) {
	p := NewSettingsPanel(testTheme(), perplexity.DefaultSettings())
	focus(t, p, "temperature")

	assert.True(t, p.Adjust(1))
	assert.InDelta(t, 0.8, p.Settings().Temperature, 1e-9)

	for range 30 {
		p.Adjust(1)
	}
	assert.Equal(t, 2.0, p.Settings().Temperature)
	assert.False(t, p.Adjust(1), "already at the upper bound")

	focus(t, p, "presence_penalty")
	for range 30 {
		p.Adjust(-1)
	}
	assert.Equal(t, -2.0, p.Settings().PresencePenalty)

	focus(t, p, "max_tokens")
	p.Adjust(1)
	assert.Equal(t, 256, p.Settings().MaxTokens)
	assert.NoError(t, p.Settings().Validate())
}

func TestSettingsPanel_CyclesChoices(t *testing.T) {
	p := NewSettingsPanel(testTheme(), perplexity.DefaultSettings())
	assert.Equal(t, "model", p.Focused())

	assert.True(t, p.Activate())
	assert.Equal(t, perplexity.ModelSonarPro, p.Settings().Model)
	p.Adjust(-1)
	p.Adjust(-1)
	assert.Equal(t, perplexity.ModelSonarReasoningPro, p.Settings().Model)

	focus(t, p, "search_recency_filter")
	p.Activate()
	assert.Equal(t, perplexity.RecencyHour, p.Settings().SearchRecencyFilter)
	p.Adjust(-1)
	p.Adjust(-1)
	assert.Equal(t, perplexity.RecencyMonth, p.Settings().SearchRecencyFilter)

	focus(t, p, "return_related_questions")
	p.Activate()
	assert.True(t, p.Settings().ReturnRelatedQuestions)
}

func TestSettingsPanel_TextFieldsAreReadOnly(t *testing.T) {
	s := perplexity.DefaultSettings()
	s.SearchDomainFilter = []string{"a.com"}
	p := NewSettingsPanel(testTheme(), s)
	focus(t, p, "search_domain_filter")

	assert.False(t, p.Activate())
	assert.False(t, p.Adjust(1))
	assert.Contains(t, plain(p.View()), "/domains")
}

func TestSettingsPanel_EditsACopy(t *testing.T) {
	s := perplexity.DefaultSettings()
	s.SearchDomainFilter = []string{"a.com"}
	p := NewSettingsPanel(testTheme(), s)

	got := p.Settings()
	got.SearchDomainFilter[0] = "changed.com"
	assert.Equal(t, "a.com", p.Settings().SearchDomainFilter[0])
	assert.Equal(t, "a.com", s.SearchDomainFilter[0])
}

func TestSettingsPanel_View(t *testing.T) {
	p := NewSettingsPanel(testTheme(), perplexity.DefaultSettings())
	p.SetWidth(60)
	out := plain(p.View())

	for _, want := range []string{"Settings", "Model", "Sonar", "Temperature", "0.7", "Recency", "none", "Structured output"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "> Model")
}
