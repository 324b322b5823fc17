// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/perplexity"
)

// =============================================================================
// REQUEST MESSAGES
// =============================================================================

// responseMsg carries the outcome of a structured query.
type responseMsg struct {
	result *perplexity.CompletionResult
	err    error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// configReloadMsg is sent when the config file changed and parsed.
type configReloadMsg struct {
	cfg *config.Config
}

// configErrMsg is sent when the changed config file failed to load.
type configErrMsg struct {
	err error
}

// watchConfig waits for the next event from w.
func watchConfig(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case cfg, ok := <-w.Updates():
			if !ok {
				return nil
			}
			return configReloadMsg{cfg: cfg}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return configErrMsg{err: err}
		}
	}
}

// =============================================================================
// NOTICES
// =============================================================================

// noticeTTL is how long a status notice stays visible.
const noticeTTL = 4 * time.Second

// clearNoticeMsg clears the notice with the given sequence number. Newer
// notices survive older timers.
type clearNoticeMsg struct {
	seq int
}

func clearNoticeAfter(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}
