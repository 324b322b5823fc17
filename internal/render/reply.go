// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedReply indicates structured content that is not a JSON object
// of either known shape.
var ErrMalformedReply = errors.New("malformed structured reply")

// Reply is a parsed structured reply: *Article or *Research.
type Reply interface {
	isReply()
}

// =============================================================================
// ARTICLE SHAPE
// =============================================================================

// Article is the titled, sectioned reply shape.
type Article struct {
	Title        string           `json:"title"`
	Sections     []ArticleSection `json:"sections"`
	SummaryTable string           `json:"summary_table,omitempty"`
	Citations    []Citation       `json:"citations"`
}

// ArticleSection is one section of an Article.
type ArticleSection struct {
	Heading     string       `json:"heading"`
	Content     string       `json:"content"`
	Subsections []Subsection `json:"subsections,omitempty"`
}

// Subsection is a nested part of a section.
type Subsection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Citation is a numbered source of an Article.
type Citation struct {
	Number CitationNumber `json:"number"`
	URL    string         `json:"url"`
}

// CitationNumber is a citation's declared number. It decodes from a JSON
// number or a numeric string. Anything else (null, other text, fractions)
// decodes to -1, which no marker matches.
type CitationNumber int

// UnmarshalJSON implements json.Unmarshaler.
func (n *CitationNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		*n = -1
		return nil
	}
	*n = CitationNumber(f)
	return nil
}

func (*Article) isReply() {}

// =============================================================================
// RESEARCH SHAPE
// =============================================================================

// Research is the flat labeled-block reply shape.
type Research struct {
	Summary     string     `json:"summary"`
	Analysis    string     `json:"analysis"`
	Methodology string     `json:"methodology"`
	Findings    []Finding  `json:"findings"`
	Limitations string     `json:"limitations"`
	Sources     stringList `json:"sources"`
	NextSteps   string     `json:"nextSteps"`
	Citations   stringList `json:"citations,omitempty"`
}

// Finding is one key finding of a Research reply.
type Finding struct {
	Point     string     `json:"point"`
	Evidence  string     `json:"evidence"`
	Citations stringList `json:"citations"`
}

func (*Research) isReply() {}

// stringList decodes a JSON array whose items may be strings or numbers.
type stringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, raw := range items {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("list item %s is neither string nor number", raw)
		}
		out = append(out, n.String())
	}
	*l = out
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// ParseReply decodes structured content. A JSON object whose "sections"
// field is a non-empty array is an *Article; any other object is a
// *Research. Everything else wraps ErrMalformedReply.
func ParseReply(content string) (Reply, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: null", ErrMalformedReply)
	}

	if hasSections(fields["sections"]) {
		var a Article
		if err := json.Unmarshal([]byte(content), &a); err != nil {
			return nil, fmt.Errorf("%w: article: %v", ErrMalformedReply, err)
		}
		return &a, nil
	}

	var r Research
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, fmt.Errorf("%w: research: %v", ErrMalformedReply, err)
	}
	return &r, nil
}

func hasSections(raw json.RawMessage) bool {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return false
	}
	return len(items) > 0
}
