// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
	"github.com/jeranaias/sonarchat/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// IdleShortcuts are shown when no request is outstanding.
var IdleShortcuts = []Shortcut{
	{"enter", "send"},
	{"^s", "settings"},
	{"^t", "theme"},
	{"tab", "related"},
	{"/help", "cmds"},
}

// BusyShortcuts are shown while a request is outstanding.
var BusyShortcuts = []Shortcut{
	{"esc", "cancel"},
	{"^c", "quit"},
}

// StatusBar is the bottom line of the chat view.
type StatusBar struct {
	Settings perplexity.Settings
	Loading  bool
	Elapsed  time.Duration
	Messages int
	Notice   string
	Width    int

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Settings: perplexity.DefaultSettings(), Width: 80, theme: theme}
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetLoading sets the request state and its elapsed time.
func (s *StatusBar) SetLoading(loading bool, elapsed time.Duration) {
	s.Loading = loading
	s.Elapsed = elapsed
}

// SetNotice sets a transient message that replaces the settings summary.
func (s *StatusBar) SetNotice(notice string) {
	s.Notice = notice
}

// View renders the status bar for the current layout mode.
func (s *StatusBar) View() string {
	inner := s.Width - s.theme.StatusBar.GetHorizontalFrameSize()

	var left string
	switch {
	case s.Notice != "":
		left = s.Notice
	case s.Loading:
		left = "searching " + formatElapsed(s.Elapsed)
	default:
		left = s.summary()
	}

	shortcuts := IdleShortcuts
	if s.Loading {
		shortcuts = BusyShortcuts
	}
	right := s.renderShortcuts(shortcuts)
	if s.layout() == styles.LayoutNarrow {
		right = s.renderShortcuts(shortcuts[:1])
	}

	left = util.TruncateWidth(left, max(inner-lipgloss.Width(right)-1, 0))
	gap := max(inner-util.StringWidth(left)-lipgloss.Width(right), 1)
	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) layout() styles.LayoutMode {
	switch {
	case s.Width < 60:
		return styles.LayoutNarrow
	case s.Width < 100:
		return styles.LayoutMedium
	default:
		return styles.LayoutWide
	}
}

// summary describes the active request settings, e.g.
// "sonar · t=0.7 · week · 2 domains · 4 msgs".
func (s *StatusBar) summary() string {
	parts := []string{string(s.Settings.Model), "t=" + util.FormatFloat(s.Settings.Temperature, 2)}
	if s.Settings.SearchRecencyFilter != perplexity.RecencyNone {
		parts = append(parts, string(s.Settings.SearchRecencyFilter))
	}
	if n := len(s.Settings.SearchDomainFilter); n > 0 {
		parts = append(parts, plural(n, "domain"))
	}
	if s.layout() == styles.LayoutWide {
		if kind := perplexity.FormatKind(s.Settings.ResponseFormat); kind != "none" {
			parts = append(parts, "format "+kind)
		}
		parts = append(parts, plural(s.Messages, "msg"))
	}
	return strings.Join(parts, " · ")
}

func (s *StatusBar) renderShortcuts(shortcuts []Shortcut) string {
	out := make([]string, len(shortcuts))
	for i, sc := range shortcuts {
		out[i] = s.theme.ShortcutKey.Render(sc.Key) + " " + s.theme.ShortcutDesc.Render(sc.Desc)
	}
	return strings.Join(out, "  ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmtNumber(n) + " " + noun + "s"
}
