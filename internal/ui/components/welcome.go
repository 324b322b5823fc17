// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// Welcome fills the conversation area before the first message.
type Welcome struct {
	Version string
	Model   perplexity.Model
	HasKey  bool

	width, height int
	theme         *styles.Theme
}

// NewWelcome creates a welcome screen.
func NewWelcome(theme *styles.Theme) *Welcome {
	return &Welcome{Model: perplexity.ModelSonar, theme: theme}
}

// SetSize sets the area the screen is centered in.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the screen centered in its area.
func (w *Welcome) View() string {
	title := w.theme.HeaderTitle.Render("sonarchat")
	if w.Version != "" {
		title += " " + w.theme.Muted.Render(w.Version)
	}
	lines := []string{
		title,
		w.theme.HeaderSubtitle.Render("Search-grounded answers with sources"),
		"",
		w.theme.FieldLabel.Render("Model  ") + w.theme.FieldValue.Render(model.GetModelInfo(w.Model).Summary()),
	}
	if !w.HasKey {
		lines = append(lines, "", styles.RenderWarning("No API key set. Press ctrl+k or run: sonarchat key set"))
	}
	lines = append(lines, "", w.shortcuts())

	box := w.theme.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if w.width <= 0 || w.height <= 0 {
		return box
	}
	vpos := lipgloss.Center
	if lipgloss.Height(box) >= w.height {
		vpos = lipgloss.Top
	}
	return lipgloss.Place(w.width, w.height, lipgloss.Center, vpos, box)
}

func (w *Welcome) shortcuts() string {
	var b strings.Builder
	for i, sc := range IdleShortcuts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(w.theme.ShortcutKey.Render(padKey(sc.Key)))
		b.WriteString(w.theme.ShortcutDesc.Render(sc.Desc))
	}
	return b.String()
}

func padKey(k string) string {
	return k + strings.Repeat(" ", max(8-len(k), 1))
}
