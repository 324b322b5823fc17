// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"iter"
	"strconv"
)

// =============================================================================
// CITATION MARKER TOKENIZER
// =============================================================================

// TokenKind distinguishes literal text from citation markers.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenCitation
)

// Token is a piece of paragraph text. For citations Text holds the whole
// marker ("[12]") and Number its value.
type Token struct {
	Kind   TokenKind
	Text   string
	Number int
}

// Tokenize splits s into literal runs and "[digits]" citation markers.
// Tokens are produced lazily and concatenating their Text yields s.
func Tokenize(s string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		start := 0
		for i := 0; i < len(s); i++ {
			if s[i] != '[' {
				continue
			}
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j == i+1 || j >= len(s) || s[j] != ']' {
				continue
			}
			n, err := strconv.Atoi(s[i+1 : j])
			if err != nil {
				continue
			}
			if start < i && !yield(Token{Kind: TokenText, Text: s[start:i]}) {
				return
			}
			if !yield(Token{Kind: TokenCitation, Text: s[i : j+1], Number: n}) {
				return
			}
			start = j + 1
			i = j
		}
		if start < len(s) {
			yield(Token{Kind: TokenText, Text: s[start:]})
		}
	}
}

// =============================================================================
// RESOLVERS
// =============================================================================

// Resolver maps a citation marker value to a URL.
type Resolver func(n int) (url string, ok bool)

// ByNumber resolves markers against each citation's declared number, so
// numbers need not be contiguous or sorted. The first match wins.
func ByNumber(citations []Citation) Resolver {
	return func(n int) (string, bool) {
		for _, c := range citations {
			if int(c.Number) == n && c.URL != "" {
				return c.URL, true
			}
		}
		return "", false
	}
}

// ByPosition resolves marker k to urls[k-1].
func ByPosition(urls []string) Resolver {
	return func(n int) (string, bool) {
		if n < 1 || n > len(urls) || urls[n-1] == "" {
			return "", false
		}
		return urls[n-1], true
	}
}

// ResolveCitations rewrites the citation markers of one text run into links.
// Unresolved markers stay literal and adjacent literal text is merged.
func ResolveCitations(text string, style Style, resolve Resolver) []Inline {
	if resolve == nil {
		return []Inline{{Text: text, Style: style}}
	}
	var out []Inline
	for tok := range Tokenize(text) {
		if tok.Kind == TokenCitation {
			if url, ok := resolve(tok.Number); ok {
				out = append(out, Inline{Text: tok.Text, URL: url, Style: style})
				continue
			}
		}
		out = appendText(out, tok.Text, style)
	}
	return out
}

// appendText adds text to inlines, extending the last run when it has the
// same style and is not a link.
func appendText(inlines []Inline, text string, style Style) []Inline {
	if text == "" {
		return inlines
	}
	if n := len(inlines); n > 0 && !inlines[n-1].IsLink() && inlines[n-1].Style == style {
		inlines[n-1].Text += text
		return inlines
	}
	return append(inlines, Inline{Text: text, Style: style})
}
