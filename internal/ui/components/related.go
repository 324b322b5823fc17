// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/sonarchat/internal/ui/styles"
	"github.com/jeranaias/sonarchat/internal/util"
)

// =============================================================================
// RELATED QUESTIONS
// =============================================================================

// RelatedList shows the follow-up questions returned with the last reply.
// Tab moves the selection; the chat model copies the selected question
// into the input.
type RelatedList struct {
	Questions []string
	Selected  int
	Width     int

	theme *styles.Theme
}

// NewRelatedList creates an empty list.
func NewRelatedList(theme *styles.Theme) *RelatedList {
	return &RelatedList{Selected: -1, Width: 80, theme: theme}
}

// SetQuestions replaces the list and clears the selection.
func (r *RelatedList) SetQuestions(questions []string) {
	r.Questions = questions
	r.Selected = -1
}

// SetWidth sets the list width.
func (r *RelatedList) SetWidth(width int) {
	r.Width = width
}

// Len returns the number of questions.
func (r *RelatedList) Len() int {
	return len(r.Questions)
}

// Next moves the selection forward, wrapping around.
func (r *RelatedList) Next() {
	if len(r.Questions) == 0 {
		return
	}
	r.Selected = (r.Selected + 1) % len(r.Questions)
}

// Height returns the number of lines View produces.
func (r *RelatedList) Height() int {
	if len(r.Questions) == 0 {
		return 0
	}
	return len(r.Questions) + 1
}

// View renders the list, or "" when empty.
func (r *RelatedList) View() string {
	if len(r.Questions) == 0 {
		return ""
	}
	lines := []string{r.theme.RelatedTitle.Render("Related")}
	for i, q := range r.Questions {
		prefix := styles.RenderTreeLine(i == len(r.Questions)-1) + toStr(i+1) + " "
		text := util.TruncateWidth(util.SingleLine(q), max(r.Width-util.StringWidth(prefix), 8))
		item := r.theme.RelatedItem.Render(text)
		if i == r.Selected {
			item = r.theme.FieldSelected.Render(text)
		}
		lines = append(lines, r.theme.RelatedIndex.Render(prefix)+item)
	}
	return strings.Join(lines, "\n")
}
