// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"
)

// =============================================================================
// INLINES
// =============================================================================

// Style is a bit set of inline text styles.
type Style uint8

const (
	StyleEmphasis Style = 1 << iota
	StyleStrong
	StyleCode
)

// Has reports whether s includes all bits of o.
func (s Style) Has(o Style) bool {
	return s&o == o
}

// Inline is a run of text, or a link when URL is set.
type Inline struct {
	Text  string
	URL   string
	Style Style
}

// IsLink reports whether the inline is a hyperlink.
func (i Inline) IsLink() bool {
	return i.URL != ""
}

// Text builds a single plain inline list.
func Text(s string) []Inline {
	if s == "" {
		return nil
	}
	return []Inline{{Text: s}}
}

// Link builds a single link inline.
func Link(text, url string) Inline {
	return Inline{Text: text, URL: url}
}

// InlineText returns the concatenated text of inlines.
func InlineText(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		b.WriteString(in.Text)
	}
	return b.String()
}

// =============================================================================
// BLOCKS
// =============================================================================

// Block is one element of a Document. The concrete types are Heading,
// Paragraph, List, Table, CodeBlock, Quote, Rule and Section.
type Block interface {
	isBlock()
}

// Heading is a title line. Level 1 is the largest.
type Heading struct {
	Level   int
	Inlines []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inlines []Inline
}

// ListItem is one entry of a List.
type ListItem struct {
	Blocks []Block
}

// List is a bulleted or numbered list.
type List struct {
	Ordered bool
	Start   int
	Items   []ListItem
}

// Alignment is a table column alignment.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table is a grid with one header row.
type Table struct {
	Header [][]Inline
	Rows   [][][]Inline
	Align  []Alignment
}

// CodeBlock is preformatted text with an optional language tag.
type CodeBlock struct {
	Language string
	Code     string
}

// Quote is a block quotation.
type Quote struct {
	Blocks []Block
}

// Rule is a horizontal separator.
type Rule struct{}

// Section groups blocks under an optional label. Indented sections hold
// nested content such as article subsections.
type Section struct {
	Label  string
	Indent bool
	Blocks []Block
}

func (Heading) isBlock()   {}
func (Paragraph) isBlock() {}
func (List) isBlock()      {}
func (Table) isBlock()     {}
func (CodeBlock) isBlock() {}
func (Quote) isBlock()     {}
func (Rule) isBlock()      {}
func (Section) isBlock()   {}

// Text returns the heading text.
func (h Heading) Text() string {
	return InlineText(h.Inlines)
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is the display tree of one message.
type Document struct {
	Blocks []Block
}

// Walk calls fn for every block in document order, descending into lists,
// quotes and sections. Returning false stops the walk.
func (d *Document) Walk(fn func(Block) bool) {
	walkBlocks(d.Blocks, fn)
}

func walkBlocks(blocks []Block, fn func(Block) bool) bool {
	for _, b := range blocks {
		if !fn(b) {
			return false
		}
		var children []Block
		switch v := b.(type) {
		case List:
			for _, item := range v.Items {
				if !walkBlocks(item.Blocks, fn) {
					return false
				}
			}
		case Quote:
			children = v.Blocks
		case Section:
			children = v.Blocks
		}
		if !walkBlocks(children, fn) {
			return false
		}
	}
	return true
}

// blockInlines returns the inline runs held directly by b.
func blockInlines(b Block) [][]Inline {
	switch v := b.(type) {
	case Heading:
		return [][]Inline{v.Inlines}
	case Paragraph:
		return [][]Inline{v.Inlines}
	case Table:
		out := append([][]Inline(nil), v.Header...)
		for _, row := range v.Rows {
			out = append(out, row...)
		}
		return out
	}
	return nil
}

// Links returns the URL of every link in document order.
func (d *Document) Links() []string {
	var urls []string
	d.Walk(func(b Block) bool {
		for _, run := range blockInlines(b) {
			for _, in := range run {
				if in.IsLink() {
					urls = append(urls, in.URL)
				}
			}
		}
		return true
	})
	return urls
}

// Headings returns the text of every heading in document order.
func (d *Document) Headings() []string {
	var out []string
	d.Walk(func(b Block) bool {
		if h, ok := b.(Heading); ok {
			out = append(out, h.Text())
		}
		return true
	})
	return out
}

// PlainText returns the document text without markup, one block per line.
func (d *Document) PlainText() string {
	var lines []string
	d.Walk(func(b Block) bool {
		switch v := b.(type) {
		case CodeBlock:
			lines = append(lines, v.Code)
		case Section:
			if v.Label != "" {
				lines = append(lines, v.Label)
			}
		default:
			for _, run := range blockInlines(b) {
				lines = append(lines, InlineText(run))
			}
		}
		return true
	})
	return strings.Join(lines, "\n")
}

// =============================================================================
// MARKDOWN SERIALIZATION
// =============================================================================

// Markdown serializes the document back to markdown. Links become
// [text](url) and labeled sections become bold labels.
func (d *Document) Markdown() string {
	var b strings.Builder
	writeBlocks(&b, d.Blocks, "")
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeBlocks(b *strings.Builder, blocks []Block, indent string) {
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString(strings.TrimRight(indent, " ") + "\n")
		}
		writeBlock(b, blk, indent)
	}
}

func writeBlock(b *strings.Builder, blk Block, indent string) {
	switch v := blk.(type) {
	case Heading:
		level := min(max(v.Level, 1), 6)
		b.WriteString(indent + strings.Repeat("#", level) + " " + inlineMarkdown(v.Inlines) + "\n")
	case Paragraph:
		for _, line := range strings.Split(inlineMarkdown(v.Inlines), "\n") {
			b.WriteString(indent + line + "\n")
		}
	case List:
		for i, item := range v.Items {
			marker := "- "
			if v.Ordered {
				marker = strconv.Itoa(max(v.Start, 1)+i) + ". "
			}
			var inner strings.Builder
			writeBlocks(&inner, item.Blocks, "")
			lines := strings.Split(strings.TrimRight(inner.String(), "\n"), "\n")
			pad := strings.Repeat(" ", len(marker))
			for j, line := range lines {
				switch {
				case j == 0:
					b.WriteString(indent + marker + line + "\n")
				case line == "":
					b.WriteString("\n")
				default:
					b.WriteString(indent + pad + line + "\n")
				}
			}
		}
	case Table:
		writeTable(b, v, indent)
	case CodeBlock:
		b.WriteString(indent + "```" + v.Language + "\n")
		for _, line := range strings.Split(strings.TrimRight(v.Code, "\n"), "\n") {
			b.WriteString(indent + line + "\n")
		}
		b.WriteString(indent + "```\n")
	case Quote:
		writeBlocks(b, v.Blocks, indent+"> ")
	case Rule:
		b.WriteString(indent + "---\n")
	case Section:
		if v.Label != "" {
			b.WriteString(indent + "**" + v.Label + "**\n\n")
		}
		writeBlocks(b, v.Blocks, indent)
	}
}

func writeTable(b *strings.Builder, t Table, indent string) {
	row := func(cells [][]Inline) {
		b.WriteString(indent + "|")
		for _, c := range cells {
			b.WriteString(" " + strings.ReplaceAll(inlineMarkdown(c), "|", `\|`) + " |")
		}
		b.WriteString("\n")
	}
	row(t.Header)
	b.WriteString(indent + "|")
	for i := range t.Header {
		align := AlignNone
		if i < len(t.Align) {
			align = t.Align[i]
		}
		switch align {
		case AlignLeft:
			b.WriteString(" :--- |")
		case AlignCenter:
			b.WriteString(" :---: |")
		case AlignRight:
			b.WriteString(" ---: |")
		default:
			b.WriteString(" --- |")
		}
	}
	b.WriteString("\n")
	for _, r := range t.Rows {
		row(r)
	}
}

// delimit wraps text in an emphasis marker. Edge whitespace stays outside
// the markers so the run still parses as emphasis.
func delimit(text, marker string) string {
	core := strings.TrimSpace(text)
	if core == "" {
		return text
	}
	start := strings.Index(text, core)
	return text[:start] + marker + core + marker + text[start+len(core):]
}

func inlineMarkdown(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		text := in.Text
		switch {
		case in.Style.Has(StyleCode):
			text = "`" + text + "`"
		case in.Style.Has(StyleStrong) && in.Style.Has(StyleEmphasis):
			text = delimit(text, "***")
		case in.Style.Has(StyleStrong):
			text = delimit(text, "**")
		case in.Style.Has(StyleEmphasis):
			text = delimit(text, "*")
		}
		if in.IsLink() {
			text = "[" + text + "](" + in.URL + ")"
		}
		b.WriteString(text)
	}
	return b.String()
}
