// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// Args are the arguments of one command invocation.
type Args struct {
	// Raw is everything after the command name, trimmed. Commands that take
	// free text such as a JSON schema or a regex read it.
	Raw string

	// Fields is Raw split on whitespace with quotes honored.
	Fields []string
}

// Len returns the number of fields.
func (a Args) Len() int {
	return len(a.Fields)
}

// Arg returns field i or "".
func (a Args) Arg(i int) string {
	if i < 0 || i >= len(a.Fields) {
		return ""
	}
	return a.Fields[i]
}

// ParseResult is the result of parsing one line of input.
type ParseResult struct {
	IsCommand bool
	Name      string // lower-cased, with the leading "/"
	Args      Args
}

// =============================================================================
// PARSER
// =============================================================================

// Parse splits a line such as `/set temperature 0.3` into a command name and
// arguments. Lines not starting with "/" are queries.
func Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	if !IsCommand(input) {
		return ParseResult{}
	}
	name, raw := input, ""
	if end := strings.IndexFunc(input, unicode.IsSpace); end >= 0 {
		name, raw = input[:end], strings.TrimSpace(input[end:])
	}
	return ParseResult{
		IsCommand: true,
		Name:      strings.ToLower(name),
		Args:      Args{Raw: raw, Fields: splitCommandLine(raw)},
	}
}

// IsCommand reports whether input is a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// splitCommandLine splits a line into tokens. Single and double quotes group
// words; a backslash escapes a quote or backslash inside quotes.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingle, inDouble, quoted bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			quoted = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			quoted = true
		case r == '\\' && i+1 < len(runes) && (inSingle || inDouble):
			if next := runes[i+1]; next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(r)
			}
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}
	return tokens
}
