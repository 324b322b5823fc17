// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// FuzzyMatch scores how well query matches target. Every query rune must
// appear in target in order, ignoring case. Runs of consecutive matches,
// matches at the start and matches after a separator score higher; longer
// targets score slightly lower.
//
//	FuzzyMatch("mo", "/model")   // matches, high score
//	FuzzyMatch("rc", "/recency") // matches, lower score
//	FuzzyMatch("zz", "/model")   // no match
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}
	q := []rune(strings.ToLower(query))
	tr := []rune(strings.ToLower(target))
	if len(q) > len(tr) {
		return 0, false
	}

	qi, last := 0, -1
	for ti := 0; ti < len(tr) && qi < len(q); ti++ {
		if tr[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		if atBoundary(tr, ti) {
			s += 7
		}
		score += s
		last = ti
		qi++
	}
	if qi != len(q) {
		return 0, false
	}
	return score - len(tr)/4, true
}

func atBoundary(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	switch prev := runes[pos-1]; {
	case prev == '/' || prev == '-' || prev == '_' || unicode.IsSpace(prev):
		return true
	default:
		return false
	}
}

// FuzzyFilter returns the targets matching query, best first. Ties keep
// their input order.
func FuzzyFilter(query string, targets []string) []string {
	type scored struct {
		target string
		score  int
	}
	var matches []scored
	for _, t := range targets {
		if s, ok := FuzzyMatch(query, t); ok {
			matches = append(matches, scored{t, s})
		}
	}
	slices.SortStableFunc(matches, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.target
	}
	return out
}

// =============================================================================
// COMMAND HINTS
// =============================================================================

// MaxCommandHints is the number of commands shown under the input.
const MaxCommandHints = 5

// CommandHints renders the slash commands matching a partial input such as
// "/mo" on a single line. It returns "" when input is not a bare command.
func CommandHints(theme *styles.Theme, input string, commands []string) string {
	if !strings.HasPrefix(input, "/") || strings.ContainsAny(input, " \t") {
		return ""
	}
	matches := FuzzyFilter(strings.TrimPrefix(input, "/"), commands)
	if len(matches) == 0 {
		return theme.Muted.Render("no matching command")
	}
	if len(matches) > MaxCommandHints {
		matches = matches[:MaxCommandHints]
	}
	parts := make([]string, len(matches))
	for i, m := range matches {
		if i == 0 {
			parts[i] = theme.ShortcutKey.Render(m)
		} else {
			parts[i] = theme.ShortcutDesc.Render(m)
		}
	}
	return strings.Join(parts, "  ")
}
