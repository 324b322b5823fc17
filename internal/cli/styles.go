// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// Shared styles for CLI output. Colors come from the TUI palette so both
// front ends look alike.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Teal)

	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(22)

	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Sage).
			Bold(true)
)

// labelValue renders one "label  value" line.
func labelValue(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
