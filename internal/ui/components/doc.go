// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the styled building blocks of the sonarchat TUI.

# Display Components

Painter (document.go) - Lays out a render.Document: wrapped paragraphs,
lists, lipgloss tables, chroma code blocks and OSC 8 hyperlinks.
MessageBubble, MessageList (message.go) - One bubble per chat message.
Header (header.go) - Title, model and API key state.
StatusBar (statusbar.go) - Settings summary, request timer and key hints.
ThinkingIndicator (spinner.go) - Spinner shown while a query is outstanding.
RelatedList (related.go) - Follow-up questions from the last reply.
Welcome (welcome.go) - Shown before the first message.

# Input Components

InputArea (input.go) - Query input, also used for masked API key entry.
SettingsPanel (settings.go) - Request settings editor.
CommandHints (fuzzy.go) - Fuzzy slash command suggestions.

All components take a *styles.Theme:

	theme := styles.NewTheme(storage.ThemeAuto)
	p := components.NewPainter(theme)
	p.SetWidth(80)
	out := p.Paint(render.New().Render(msg))
*/
package components
