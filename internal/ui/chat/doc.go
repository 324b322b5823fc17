// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive chat view of sonarchat.

The Model is a Bubble Tea model over a session.Session. A query typed into
the input is appended as a user message, sent as a structured query on a
background command, and the reply or the apology message is appended when
the response arrives. While a request is outstanding a spinner shows the
elapsed time against the timeout, and esc cancels it.

# Layout

  - Header: application title, model and API key state
  - Conversation: rendered replies in a scrollable viewport, followed by
    the thinking indicator or the related questions
  - Input: query box, or a hidden key box in key entry mode, with slash
    command hints above it
  - Status bar: settings summary, transient notices and shortcuts

# Modes

ModeChat is the default. ModeSettings shows the settings panel, where
arrow keys adjust the request settings and every accepted edit applies to
the session immediately. ModeKeyEntry reads an API key without echo.

# Keys

	enter    send the query or run a /command
	esc      cancel the outstanding request
	tab      cycle related questions into the input
	ctrl+s   settings panel
	ctrl+t   toggle dark and light theme
	ctrl+k   enter an API key
	ctrl+c   quit

Slash commands are shared with the plain REPL through the commands
package. Config file edits are picked up through config.Watch when a
watcher is supplied.
*/
package chat
