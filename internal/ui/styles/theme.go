// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/sonarchat/internal/storage"
)

// Theme holds the styled components of the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Chrome
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// Message bubbles
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Placeholder    lipgloss.Style

	// Loading
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ThinkingTime lipgloss.Style

	// Document
	Heading1      lipgloss.Style
	Heading2      lipgloss.Style
	Heading3      lipgloss.Style
	Paragraph     lipgloss.Style
	Link          lipgloss.Style
	InlineCode    lipgloss.Style
	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	Quote         lipgloss.Style
	Rule          lipgloss.Style
	ListBullet    lipgloss.Style
	SectionLabel  lipgloss.Style
	TableHeader   lipgloss.Style
	TableCell     lipgloss.Style
	TableBorder   lipgloss.Style

	// Settings panel
	Panel         lipgloss.Style
	PanelTitle    lipgloss.Style
	FieldLabel    lipgloss.Style
	FieldValue    lipgloss.Style
	FieldSelected lipgloss.Style
	FieldHint     lipgloss.Style

	// Related questions
	RelatedTitle lipgloss.Style
	RelatedIndex lipgloss.Style
	RelatedItem  lipgloss.Style

	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// NewTheme creates a theme for the saved preference. ThemeAuto follows the
// terminal background.
func NewTheme(pref storage.Theme) *Theme {
	isDark := pref == storage.ThemeDark
	if pref == storage.ThemeAuto {
		isDark = termenv.HasDarkBackground()
	}
	t := &Theme{ColorProfile: termenv.ColorProfile()}
	t.SetDark(isDark)
	return t
}

// SetDark switches the palette and rebuilds every style.
func (t *Theme) SetDark(isDark bool) {
	t.IsDark = isDark
	lipgloss.SetHasDarkBackground(isDark)
	t.initStyles()
}

// Preference returns the explicit theme matching the current palette.
func (t *Theme) Preference() storage.Theme {
	if t.IsDark {
		return storage.ThemeDark
	}
	return storage.ThemeLight
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		BorderForeground(SystemBubbleBorder).
		PaddingLeft(1)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderForeground(Overlay)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Loading
	t.Spinner = lipgloss.NewStyle().Foreground(Teal)
	t.ThinkingText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.ThinkingTime = lipgloss.NewStyle().Foreground(TextMuted)

	// Document
	t.Heading1 = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Underline(true)

	t.Heading2 = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.Heading3 = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sage)

	t.Paragraph = lipgloss.NewStyle().Foreground(TextPrimary)

	t.Link = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.InlineCode = lipgloss.NewStyle().
		Foreground(SyntaxKeyword).
		Background(SurfaceBright)

	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.Quote = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		BorderForeground(Overlay).
		PaddingLeft(1)

	t.Rule = lipgloss.NewStyle().Foreground(Overlay)
	t.ListBullet = lipgloss.NewStyle().Foreground(Teal)

	t.SectionLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sage)

	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Padding(0, 1)

	t.TableCell = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.TableBorder = lipgloss.NewStyle().Foreground(Overlay)

	// Settings panel
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(0, 2)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		MarginBottom(1)

	t.FieldLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FieldValue = lipgloss.NewStyle().Foreground(TextPrimary)

	t.FieldSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Teal)

	t.FieldHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Related questions
	t.RelatedTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sage)

	t.RelatedIndex = lipgloss.NewStyle().Foreground(Teal)
	t.RelatedItem = lipgloss.NewStyle().Foreground(TextSecondary)

	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Success = lipgloss.NewStyle().Foreground(Emerald)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
