// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK
// =============================================================================

// RenderCodeBlock renders code with syntax highlighting and a language badge.
// Lines wider than width are cut rather than wrapped.
func RenderCodeBlock(theme *styles.Theme, code, language string, width int) string {
	code = strings.TrimRight(code, "\n")
	if code == "" {
		return ""
	}
	if language == "" {
		language = detectLanguage(code)
	}

	body := highlightCode(code, language, theme.IsDark)
	inner := max(width-theme.CodeBlock.GetHorizontalFrameSize(), 1)
	block := theme.CodeBlock.MaxWidth(width).Render(
		lipgloss.NewStyle().MaxWidth(inner).Render(body))

	if language == "" {
		return block
	}
	return lipgloss.JoinVertical(lipgloss.Left, theme.CodeLangBadge.Render(strings.ToLower(language)), block)
}

// highlightCode applies chroma highlighting. Unknown languages are guessed
// from the content; on any failure the code is returned as is.
func highlightCode(code, language string, dark bool) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	name := "github"
	if dark {
		name = "monokai"
	}
	style := chromaStyles.Get(name)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// detectLanguage returns the chroma name of the guessed language, or "".
func detectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}
