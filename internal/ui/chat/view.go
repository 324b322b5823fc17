// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/ui/components"
)

// maxPanelWidth caps the settings panel on wide terminals.
const maxPanelWidth = 72

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat view: header, conversation, input and status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	middle := m.viewport.View()
	if m.mode == ModeSettings {
		panel := lipgloss.JoinVertical(lipgloss.Left,
			m.settings.View(),
			m.help.View(m.settingsKeys),
		)
		middle = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, panel)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		middle,
		m.bottomView(),
	)
}

// bottomView renders command hints, the input and the status bar.
func (m Model) bottomView() string {
	var parts []string
	if m.mode == ModeChat {
		if hints := components.CommandHints(m.theme, m.input.Value(), m.registry.Names()); hints != "" {
			parts = append(parts, " "+hints)
		}
	}
	parts = append(parts, m.input.View(), m.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// STATE SYNC
// =============================================================================

// refresh copies session state into the components and redoes the layout.
func (m *Model) refresh() {
	settings := m.sess.Settings()
	m.header.SetModel(settings.Model)
	m.header.SetAPIKey(m.sess.APIKey())
	m.status.Settings = settings
	m.status.Messages = len(m.sess.Messages())
	m.welcome.Model = settings.Model
	m.welcome.HasKey = m.sess.HasAPIKey()

	if questions := m.sess.RelatedQuestions(); !slices.Equal(questions, m.related.Questions) {
		m.related.SetQuestions(questions)
	}
	m.layout()
}

// layout sizes every component for the terminal and refills the viewport.
func (m *Model) layout() {
	if m.width > 0 {
		m.theme.SetSize(m.width, m.height)
		m.header.SetWidth(m.width)
		m.status.SetWidth(m.width)
		m.input.SetWidth(m.width)
		m.related.SetWidth(m.width)
		if m.wordWrap > 0 {
			m.messages.SetWidth(min(m.width, m.wordWrap))
		} else {
			m.messages.SetWidth(m.width)
		}
		m.settings.SetWidth(min(m.width, maxPanelWidth))
		m.help.Width = min(m.width, maxPanelWidth)
		m.viewport.Width = m.width
	}
	if m.height > 0 {
		used := lipgloss.Height(m.header.View()) + lipgloss.Height(m.bottomView())
		m.viewport.Height = max(m.height-used, 1)
	}
	m.refreshConversation(true)
}

// refreshConversation rebuilds the viewport content. The view follows the
// newest output when follow is set or it was already at the bottom.
func (m *Model) refreshConversation(follow bool) {
	atBottom := m.viewport.AtBottom()

	msgs := m.sess.Messages()
	var content string
	if len(msgs) == 0 && !m.thinking.IsActive() {
		m.welcome.SetSize(m.viewport.Width, m.viewport.Height)
		content = m.welcome.View()
	} else {
		m.messages.SetMessages(msgs)
		parts := []string{m.messages.View()}
		if m.thinking.IsActive() {
			parts = append(parts, " "+m.thinking.View())
		} else if m.related.Len() > 0 {
			parts = append(parts, m.related.View())
		}
		content = strings.Join(parts, "\n\n")
	}

	m.viewport.SetContent(content)
	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}
