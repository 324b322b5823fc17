// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// ThinkingIndicator is shown below the conversation while a query is
// outstanding.
type ThinkingIndicator struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	timeout   time.Duration
	active    bool
	theme     *styles.Theme
}

// NewThinkingIndicator creates an inactive indicator.
func NewThinkingIndicator(theme *styles.Theme) ThinkingIndicator {
	s := spinner.New()
	s.Spinner = styles.SearchSpinner.Bubble()
	if theme.ColorProfile == termenv.Ascii {
		s.Spinner = styles.DotsSpinner.Bubble()
	}
	s.Style = theme.Spinner
	return ThinkingIndicator{spinner: s, message: "Searching", theme: theme}
}

// Start activates the indicator and returns the first tick.
func (t *ThinkingIndicator) Start(timeout time.Duration) tea.Cmd {
	t.active = true
	t.startTime = time.Now()
	t.timeout = timeout
	return t.spinner.Tick
}

// Stop deactivates the indicator. Pending ticks are ignored.
func (t *ThinkingIndicator) Stop() {
	t.active = false
}

// IsActive reports whether the indicator is running.
func (t *ThinkingIndicator) IsActive() bool {
	return t.active
}

// Elapsed returns the time since Start.
func (t *ThinkingIndicator) Elapsed() time.Duration {
	if !t.active {
		return 0
	}
	return time.Since(t.startTime)
}

// Update advances the animation.
func (t ThinkingIndicator) Update(msg tea.Msg) (ThinkingIndicator, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders "<frame> Searching 3.2s / 1m00s".
func (t ThinkingIndicator) View() string {
	if !t.active {
		return ""
	}
	out := t.spinner.View() + " " + t.theme.ThinkingText.Render(t.message+"...")
	elapsed := formatElapsed(t.Elapsed())
	if t.timeout > 0 {
		elapsed += " / " + formatElapsed(t.timeout)
	}
	return out + " " + t.theme.ThinkingTime.Render(elapsed)
}
