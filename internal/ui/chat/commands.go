// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/commands"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// runCommand executes a slash command and applies its Action. One-line
// output goes to the status bar; longer output such as /help is added to
// the conversation as a system message.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	m.cmdCtx.Theme = string(m.theme.Preference())
	res := m.registry.Execute(m.cmdCtx, input)

	var cmds []tea.Cmd
	switch {
	case res.Err != nil:
		cmds = append(cmds, m.notifyErr(res.Err))
	case strings.Contains(res.Output, "\n"):
		m.sess.AppendNotice(res.Output)
	case res.Output != "":
		cmds = append(cmds, m.notify(res.Output))
	}

	var next tea.Model = m
	switch res.Action {
	case commands.ActionQuit:
		m.cancelMgr.abort()
		return m, tea.Quit
	case commands.ActionToggleTheme:
		cmds = append(cmds, m.toggleTheme())
		next = m
	case commands.ActionFillInput:
		m.input.SetValue(res.Input)
		next = m
	case commands.ActionOpenSettings:
		var cmd tea.Cmd
		next, cmd = m.openSettings()
		cmds = append(cmds, cmd)
	case commands.ActionKeyEntry:
		var cmd tea.Cmd
		next, cmd = m.enterKeyMode()
		cmds = append(cmds, cmd)
	}

	if nm, ok := next.(Model); ok {
		nm.refresh()
		next = nm
	}
	m.logger.Debug("command executed", zap.String("input", commandName(input)))
	return next, tea.Batch(cmds...)
}

// commandName returns the first word of input so arguments such as API keys
// stay out of the log.
func commandName(input string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(input), " ")
	return name
}
