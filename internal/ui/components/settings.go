// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
	"github.com/jeranaias/sonarchat/internal/util"
)

// =============================================================================
// SETTINGS PANEL
// =============================================================================

type fieldKind int

const (
	fieldNumber fieldKind = iota
	fieldChoice
	fieldToggle
	fieldText // edited through a slash command
)

type settingsField struct {
	key   string
	label string
	hint  string
	kind  fieldKind

	min, max, step float64

	get func(s *perplexity.Settings) float64
	set func(s *perplexity.Settings, v float64)

	// choice and toggle fields
	cycle   func(s *perplexity.Settings, dir int)
	display func(s *perplexity.Settings) string
}

func numberField(key, label string, lo, hi, step float64, ptr func(*perplexity.Settings) *float64) settingsField {
	return settingsField{
		key: key, label: label, kind: fieldNumber, min: lo, max: hi, step: step,
		get: func(s *perplexity.Settings) float64 { return *ptr(s) },
		set: func(s *perplexity.Settings, v float64) { *ptr(s) = v },
	}
}

func intField(key, label, hint string, lo, hi, step float64, ptr func(*perplexity.Settings) *int) settingsField {
	return settingsField{
		key: key, label: label, hint: hint, kind: fieldNumber, min: lo, max: hi, step: step,
		get: func(s *perplexity.Settings) float64 { return float64(*ptr(s)) },
		set: func(s *perplexity.Settings, v float64) { *ptr(s) = int(v) },
	}
}

func toggleField(key, label string, ptr func(*perplexity.Settings) *bool) settingsField {
	return settingsField{
		key: key, label: label, kind: fieldToggle,
		cycle: func(s *perplexity.Settings, _ int) { *ptr(s) = !*ptr(s) },
		display: func(s *perplexity.Settings) string {
			if *ptr(s) {
				return "on"
			}
			return "off"
		},
	}
}

func cycleIndex(i, n, dir int) int {
	return ((i+dir)%n + n) % n
}

var settingsFields = []settingsField{
	{
		key: "model", label: "Model", kind: fieldChoice,
		cycle: func(s *perplexity.Settings, dir int) {
			models := perplexity.Models()
			s.Model = models[cycleIndex(slices.Index(models, s.Model), len(models), dir)]
		},
		display: func(s *perplexity.Settings) string {
			return model.GetModelInfo(s.Model).Name
		},
	},
	numberField("temperature", "Temperature", 0, 2, 0.1,
		func(s *perplexity.Settings) *float64 { return &s.Temperature }),
	numberField("top_p", "Top P", 0, 1, 0.1,
		func(s *perplexity.Settings) *float64 { return &s.TopP }),
	intField("top_k", "Top K", "0 disables", 0, 100, 1,
		func(s *perplexity.Settings) *int { return &s.TopK }),
	numberField("presence_penalty", "Presence penalty", -2, 2, 0.1,
		func(s *perplexity.Settings) *float64 { return &s.PresencePenalty }),
	numberField("frequency_penalty", "Frequency penalty", 0, 2, 0.1,
		func(s *perplexity.Settings) *float64 { return &s.FrequencyPenalty }),
	intField("max_tokens", "Max tokens", "0 uses the model default", 0, 16384, 256,
		func(s *perplexity.Settings) *int { return &s.MaxTokens }),
	toggleField("return_images", "Return images",
		func(s *perplexity.Settings) *bool { return &s.ReturnImages }),
	toggleField("return_related_questions", "Related questions",
		func(s *perplexity.Settings) *bool { return &s.ReturnRelatedQuestions }),
	{
		key: "search_recency_filter", label: "Recency", kind: fieldChoice,
		cycle: func(s *perplexity.Settings, dir int) {
			windows := perplexity.RecencyFilters()
			i := max(slices.Index(windows, s.SearchRecencyFilter), 0)
			s.SearchRecencyFilter = windows[cycleIndex(i, len(windows), dir)]
		},
		display: func(s *perplexity.Settings) string {
			if s.SearchRecencyFilter == perplexity.RecencyNone {
				return "none"
			}
			return string(s.SearchRecencyFilter)
		},
	},
	{
		key: "search_domain_filter", label: "Domains", kind: fieldText, hint: "/domains a.com,-b.com",
		display: func(s *perplexity.Settings) string {
			if len(s.SearchDomainFilter) == 0 {
				return "any"
			}
			return strings.Join(s.SearchDomainFilter, ", ")
		},
	},
	{
		key: "response_format", label: "Structured output", kind: fieldText, hint: "/schema, /regex or /format none",
		display: func(s *perplexity.Settings) string {
			return perplexity.FormatKind(s.ResponseFormat)
		},
	},
}

// SettingsPanel edits a copy of the request settings. Up and down move the
// cursor; left and right step numbers within range and cycle choices; enter
// cycles choices and flips toggles.
type SettingsPanel struct {
	settings perplexity.Settings
	cursor   int
	Width    int

	theme *styles.Theme
}

// NewSettingsPanel creates a panel editing s.
func NewSettingsPanel(theme *styles.Theme, s perplexity.Settings) *SettingsPanel {
	return &SettingsPanel{settings: s.Clone(), Width: 60, theme: theme}
}

// Load replaces the edited settings, keeping the cursor.
func (p *SettingsPanel) Load(s perplexity.Settings) {
	p.settings = s.Clone()
}

// Settings returns a copy of the edited settings.
func (p *SettingsPanel) Settings() perplexity.Settings {
	return p.settings.Clone()
}

// SetWidth sets the panel width.
func (p *SettingsPanel) SetWidth(width int) {
	p.Width = width
}

// Focused returns the key of the field under the cursor.
func (p *SettingsPanel) Focused() string {
	return settingsFields[p.cursor].key
}

// Up moves the cursor up, wrapping.
func (p *SettingsPanel) Up() {
	p.cursor = cycleIndex(p.cursor, len(settingsFields), -1)
}

// Down moves the cursor down, wrapping.
func (p *SettingsPanel) Down() {
	p.cursor = cycleIndex(p.cursor, len(settingsFields), 1)
}

// Adjust steps the focused field by dir (-1 or 1). It reports whether the
// settings changed.
func (p *SettingsPanel) Adjust(dir int) bool {
	f := settingsFields[p.cursor]
	switch f.kind {
	case fieldNumber:
		old := f.get(&p.settings)
		v := math.Round((old+float64(dir)*f.step)*100) / 100
		v = min(max(v, f.min), f.max)
		if v == old {
			return false
		}
		f.set(&p.settings, v)
		return true
	case fieldChoice, fieldToggle:
		f.cycle(&p.settings, dir)
		return true
	default:
		return false
	}
}

// Activate cycles the focused choice or flips the focused toggle.
func (p *SettingsPanel) Activate() bool {
	f := settingsFields[p.cursor]
	if f.kind != fieldChoice && f.kind != fieldToggle {
		return false
	}
	f.cycle(&p.settings, 1)
	return true
}

// View renders the panel.
func (p *SettingsPanel) View() string {
	labelWidth := 0
	for _, f := range settingsFields {
		labelWidth = max(labelWidth, util.StringWidth(f.label))
	}
	inner := max(p.Width-p.theme.Panel.GetHorizontalFrameSize(), 20)
	valueWidth := max(inner-labelWidth-4, 8)

	lines := []string{p.theme.PanelTitle.Render("Settings")}
	for i, f := range settingsFields {
		value := util.TruncateWidth(p.value(f), valueWidth)
		cursor := "  "
		label := p.theme.FieldLabel.Render(util.PadRight(f.label, labelWidth))
		rendered := p.theme.FieldValue.Render(value)
		if i == p.cursor {
			cursor = p.theme.ShortcutKey.Render("> ")
			rendered = p.theme.FieldSelected.Render(value)
		}
		lines = append(lines, cursor+label+"  "+rendered)
	}

	hint := "up/down select · left/right adjust · enter cycle · esc close"
	if h := settingsFields[p.cursor].hint; h != "" {
		hint = h
	}
	lines = append(lines, "", p.theme.FieldHint.Render(util.TruncateWidth(hint, inner)))

	return p.theme.Panel.Width(p.Width - p.theme.Panel.GetHorizontalBorderSize()).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (p *SettingsPanel) value(f settingsField) string {
	if f.kind == fieldNumber {
		return util.FormatFloat(f.get(&p.settings), 2)
	}
	return f.display(&p.settings)
}
