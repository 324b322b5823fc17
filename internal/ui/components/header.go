// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
	"github.com/jeranaias/sonarchat/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title line at the top of the chat view.
type Header struct {
	Title   string
	Model   perplexity.Model
	KeyHint string // masked API key, empty when none is set
	Width   int

	theme *styles.Theme
}

// NewHeader creates a header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "sonarchat",
		Model: perplexity.ModelSonar,
		Width: 80,
		theme: theme,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetModel sets the displayed model.
func (h *Header) SetModel(m perplexity.Model) {
	h.Model = m
}

// SetAPIKey records the key state. Only a masked form is displayed.
func (h *Header) SetAPIKey(key string) {
	if key == "" {
		h.KeyHint = ""
		return
	}
	h.KeyHint = perplexity.MaskKey(key)
}

// View renders the header. Narrow terminals get the title and model only.
func (h *Header) View() string {
	info := model.GetModelInfo(h.Model)
	title := h.theme.HeaderTitle.Render(h.Title)

	parts := []string{title, h.theme.HeaderSubtitle.Render(info.Name)}
	if h.Width >= 60 {
		parts = append(parts, h.theme.Muted.Render(info.Tier))
	}

	var key string
	switch {
	case h.KeyHint == "":
		key = h.theme.Error.Render("no API key (ctrl+k)")
	case h.Width >= 80:
		key = h.theme.Muted.Render("key " + h.KeyHint)
	}

	left := strings.Join(parts, h.theme.Muted.Render(" · "))
	inner := h.Width - h.theme.Header.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(key)
	if gap < 1 {
		left = util.TruncateWidth(h.Title+" · "+info.Name, max(inner-lipgloss.Width(key)-1, 8))
		gap = max(inner-lipgloss.Width(left)-lipgloss.Width(key), 1)
	}

	return h.theme.Header.Width(h.Width).Render(left + strings.Repeat(" ", gap) + key)
}
