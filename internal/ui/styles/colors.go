// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Teal - brand color, assistant accents, headings
var Teal = lipgloss.AdaptiveColor{Light: "#1A7F8E", Dark: "#20B8CD"}

// TealDeep - darker teal for backgrounds
var TealDeep = lipgloss.AdaptiveColor{Light: "#0E5A66", Dark: "#0F3D44"}

// Sage - secondary accent, section labels
var Sage = lipgloss.AdaptiveColor{Light: "#2E6F5E", Dark: "#94D2BD"}

// Sky - user messages, links
var Sky = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#7AB8FF"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings, system notices
var Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// Emerald - success
var Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#13191C"}
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F3F6F6", Dark: "#0E1315"}
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#E8EEEF", Dark: "#1C2427"}

// Overlay - borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D9E2E4", Dark: "#2F3C40"}

// =============================================================================
// TEXT COLORS
// =============================================================================

var TextPrimary = lipgloss.AdaptiveColor{Light: "#13343B", Dark: "#E4ECEE"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#3F5B61", Dark: "#B3C2C6"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#6F8489", Dark: "#6F8489"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#13191C"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E3A8A", Dark: "#E0F2FE"}
var UserBubbleBorder = Sky

var AssistantBubbleFg = TextPrimary
var AssistantBubbleBorder = Teal

var SystemBubbleFg = lipgloss.AdaptiveColor{Light: "#92400E", Dark: "#FEF3C7"}
var SystemBubbleBorder = Amber

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

var SyntaxKeyword = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}
var SyntaxString = lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"}
var SyntaxNumber = lipgloss.AdaptiveColor{Light: "#FE640B", Dark: "#FAB387"}
var SyntaxComment = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"}
var SyntaxFunction = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
var SyntaxType = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}
var SyntaxOperator = lipgloss.AdaptiveColor{Light: "#04A5E5", Dark: "#89DCEB"}

// =============================================================================
// ACCESSIBILITY
// =============================================================================

// StatusIndicatorSet holds ASCII markers shown next to status colors.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
}

// StatusIndicators pair every status color with a shape.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}

// LinkColor is used for citation links.
var LinkColor = Sky

// RenderSuccess renders message with the success marker.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(Emerald).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders message with the error marker.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders message with the warning marker.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Amber).Bold(true).
		Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders message with the info marker.
func RenderInfo(message string) string {
	return lipgloss.NewStyle().Foreground(Teal).Bold(true).
		Render(StatusIndicators.Info + " " + message)
}
