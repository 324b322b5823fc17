// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the colors and lipgloss styles of the sonarchat TUI.
//
// Colors are lipgloss.AdaptiveColor pairs. Which half is used depends on
// lipgloss's dark-background flag, which NewTheme sets from the saved theme
// preference or, when none is saved, from the terminal background.
//
// # Usage
//
//	theme := styles.NewTheme(storage.ThemeAuto)
//	fmt.Println(theme.Heading1.Render("Title"))
//	theme.SetDark(false) // switch to the light palette
package styles
