// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/commands"
	"github.com/jeranaias/sonarchat/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case responseMsg:
		return m.handleResponse(msg)

	case spinner.TickMsg:
		if !m.thinking.IsActive() {
			return m, nil
		}
		var cmd tea.Cmd
		m.thinking, cmd = m.thinking.Update(msg)
		m.status.SetLoading(true, m.thinking.Elapsed())
		m.refreshConversation(false)
		return m, cmd

	case configReloadMsg:
		return m.handleConfigReload(msg)

	case configErrMsg:
		m.logger.Warn("config reload failed", zap.Error(msg.err))
		return m, tea.Batch(m.notify("config not reloaded: "+msg.err.Error()), watchConfig(m.watcher))

	case clearNoticeMsg:
		if msg.seq == *m.noticeSeq {
			m.status.SetNotice("")
		}
		return m, nil
	}
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancelMgr.abort()
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSettings:
		return m.handleSettingsKey(msg)
	case ModeKeyEntry:
		return m.handleKeyEntryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.sess.Loading() {
			m.cancelMgr.abort()
			return m, m.notify("cancelling...")
		}
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()

	case key.Matches(msg, m.keys.Theme):
		cmd := m.toggleTheme()
		return m, cmd

	case key.Matches(msg, m.keys.APIKey):
		return m.enterKeyMode()

	case key.Matches(msg, m.keys.Related):
		if m.related.Len() == 0 {
			return m, nil
		}
		m.related.Next()
		m.input.SetValue(m.related.Questions[m.related.Selected])
		m.refreshConversation(true)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if strings.HasPrefix(before, "/") || strings.HasPrefix(m.input.Value(), "/") {
		m.layout()
	}
	return m, cmd
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.settingsKeys
	switch {
	case key.Matches(msg, k.Close):
		return m.closeSettings()
	case key.Matches(msg, k.Up):
		m.settings.Up()
	case key.Matches(msg, k.Down):
		m.settings.Down()
	case key.Matches(msg, k.Decrease):
		if m.settings.Adjust(-1) {
			cmd := m.applySettingsPanel()
			return m, cmd
		}
	case key.Matches(msg, k.Increase):
		if m.settings.Adjust(1) {
			cmd := m.applySettingsPanel()
			return m, cmd
		}
	case key.Matches(msg, k.Cycle):
		if m.settings.Activate() {
			cmd := m.applySettingsPanel()
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleKeyEntryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.leaveKeyMode(), nil
	case key.Matches(msg, m.keys.Submit):
		apiKey := strings.TrimSpace(m.input.Value())
		if apiKey == "" {
			return m.leaveKeyMode(), nil
		}
		if err := m.sess.SetAPIKey(apiKey); err != nil {
			m.input.Reset()
			return m, m.notifyErr(err)
		}
		m = m.leaveKeyMode()
		return m, m.notify("API key saved")
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if commands.IsCommand(value) {
		m.input.Reset()
		return m.runCommand(value)
	}

	req, err := m.sess.Begin(value)
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return m, nil
	case errors.Is(err, session.ErrNoAPIKey):
		next, cmd := m.enterKeyMode()
		return next, tea.Batch(cmd, m.notify("set an API key first"))
	case err != nil:
		return m, m.notifyErr(err)
	}

	m.input.Reset()
	ctx := m.cancelMgr.begin(context.Background())
	spin := m.thinking.Start(m.sess.Timeout())
	m.status.SetLoading(true, 0)
	m.refresh()

	sess := m.sess
	query := func() tea.Msg {
		res, err := sess.Execute(ctx, req)
		return responseMsg{result: res, err: err}
	}
	return m, tea.Batch(spin, query)
}

func (m Model) handleResponse(msg responseMsg) (tea.Model, tea.Cmd) {
	m.cancelMgr.done()
	m.sess.Complete(msg.result, msg.err)
	m.thinking.Stop()
	m.status.SetLoading(false, 0)
	m.refresh()
	return m, nil
}
