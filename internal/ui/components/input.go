// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// INPUT AREA
// =============================================================================

// InputMode selects what the input box is collecting.
type InputMode int

const (
	// InputQuery collects a question or slash command.
	InputQuery InputMode = iota
	// InputSecret collects an API key with masked echo.
	InputSecret
)

// QueryPlaceholder is shown in an empty query input.
const QueryPlaceholder = "Ask anything... (/ for commands)"

// MaxQueryChars bounds a single query.
const MaxQueryChars = 4096

// InputArea is the text input at the bottom of the chat view.
type InputArea struct {
	input textinput.Model
	mode  InputMode
	width int
	theme *styles.Theme
}

// NewInputArea creates a focused-ready query input.
func NewInputArea(theme *styles.Theme) *InputArea {
	ti := textinput.New()
	ti.CharLimit = MaxQueryChars
	ti.Prompt = "> "
	i := &InputArea{input: ti, width: 80, theme: theme}
	i.ApplyTheme(theme)
	i.SetMode(InputQuery)
	return i
}

// ApplyTheme restyles the input after a theme change.
func (i *InputArea) ApplyTheme(theme *styles.Theme) {
	i.theme = theme
	i.input.PromptStyle = theme.InputPrompt
	i.input.TextStyle = theme.Paragraph
	i.input.PlaceholderStyle = theme.Placeholder
	i.input.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Teal)
}

// SetMode switches between query and secret entry. The value is cleared.
func (i *InputArea) SetMode(mode InputMode) {
	i.mode = mode
	i.input.Reset()
	switch mode {
	case InputSecret:
		i.input.EchoMode = textinput.EchoPassword
		i.input.EchoCharacter = '•'
		i.input.Placeholder = "Paste your Perplexity API key (esc to cancel)"
		i.input.Prompt = "key> "
	default:
		i.input.EchoMode = textinput.EchoNormal
		i.input.Placeholder = QueryPlaceholder
		i.input.Prompt = "> "
	}
}

// Mode returns the current input mode.
func (i *InputArea) Mode() InputMode {
	return i.mode
}

// Focus focuses the input.
func (i *InputArea) Focus() tea.Cmd {
	return i.input.Focus()
}

// Blur removes focus.
func (i *InputArea) Blur() {
	i.input.Blur()
}

// Focused reports whether the input has focus.
func (i *InputArea) Focused() bool {
	return i.input.Focused()
}

// SetWidth sets the input width.
func (i *InputArea) SetWidth(width int) {
	i.width = width
	i.input.Width = max(width-lipgloss.Width(i.input.Prompt)-2, 10)
}

// Value returns the current text.
func (i *InputArea) Value() string {
	return i.input.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (i *InputArea) SetValue(value string) {
	i.input.SetValue(value)
	i.input.CursorEnd()
}

// Reset clears the text.
func (i *InputArea) Reset() {
	i.input.Reset()
}

// Update forwards key messages to the text input.
func (i *InputArea) Update(msg tea.Msg) (*InputArea, tea.Cmd) {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	return i, cmd
}

// View renders the input with a top rule and, for long queries, a counter.
func (i *InputArea) View() string {
	view := i.theme.InputContainer.Width(i.width).Render(i.input.View())
	if i.mode != InputQuery {
		return view
	}
	if count := len([]rune(i.input.Value())); count >= MaxQueryChars/2 {
		counter := fmtNumber(count) + " / " + fmtNumber(MaxQueryChars)
		style := i.theme.Muted
		if count >= MaxQueryChars*9/10 {
			style = i.theme.Error
		}
		pad := max(i.width-lipgloss.Width(counter), 0)
		view += "\n" + strings.Repeat(" ", pad) + style.Render(counter)
	}
	return view
}
