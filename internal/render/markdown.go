// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// newMarkdown returns the goldmark parser used for message bodies: CommonMark
// plus GFM tables.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.Table))
}

// converter turns one parsed markdown source into blocks. Paragraph text
// runs pass through resolve, which may be nil.
type converter struct {
	src     []byte
	resolve Resolver
}

// parseMarkdown parses src and converts it to blocks.
func parseMarkdown(md goldmark.Markdown, src string, resolve Resolver) []Block {
	source := []byte(src)
	root := md.Parser().Parse(text.NewReader(source))
	c := &converter{src: source, resolve: resolve}
	return c.blocks(root)
}

func (c *converter) blocks(parent ast.Node) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.block(n)...)
	}
	return out
}

func (c *converter) block(n ast.Node) []Block {
	switch v := n.(type) {
	case *ast.Heading:
		return []Block{Heading{Level: v.Level, Inlines: c.inlines(v, nil)}}
	case *ast.Paragraph, *ast.TextBlock:
		inlines := c.inlines(v, c.resolve)
		if len(inlines) == 0 {
			return nil
		}
		return []Block{Paragraph{Inlines: inlines}}
	case *ast.List:
		list := List{Ordered: v.IsOrdered(), Start: v.Start}
		for item := v.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, ListItem{Blocks: c.blocks(item)})
		}
		return []Block{list}
	case *ast.FencedCodeBlock:
		return []Block{CodeBlock{Language: string(v.Language(c.src)), Code: c.lines(v)}}
	case *ast.CodeBlock:
		return []Block{CodeBlock{Code: c.lines(v)}}
	case *ast.Blockquote:
		return []Block{Quote{Blocks: c.blocks(v)}}
	case *ast.ThematicBreak:
		return []Block{Rule{}}
	case *ast.HTMLBlock:
		raw := strings.TrimRight(c.lines(v), "\n")
		if raw == "" {
			return nil
		}
		return []Block{Paragraph{Inlines: Text(raw)}}
	case *east.Table:
		return []Block{c.table(v)}
	default:
		return c.blocks(n)
	}
}

func (c *converter) table(t *east.Table) Table {
	var out Table
	for _, a := range t.Alignments {
		switch a {
		case east.AlignLeft:
			out.Align = append(out.Align, AlignLeft)
		case east.AlignCenter:
			out.Align = append(out.Align, AlignCenter)
		case east.AlignRight:
			out.Align = append(out.Align, AlignRight)
		default:
			out.Align = append(out.Align, AlignNone)
		}
	}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells [][]Inline
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, c.inlines(cell, nil))
		}
		if _, ok := row.(*east.TableHeader); ok {
			out.Header = cells
			continue
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func (c *converter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	return buf.String()
}

// inlines flattens the inline children of n. Adjacent text with the same
// style is merged first so a marker split across parser nodes ("[", "1]")
// is seen whole, then citation markers are resolved.
func (c *converter) inlines(n ast.Node, resolve Resolver) []Inline {
	var runs []Inline
	c.collect(n, 0, &runs)

	var out []Inline
	for _, in := range runs {
		if in.IsLink() || in.Style.Has(StyleCode) || resolve == nil {
			out = appendRun(out, in)
			continue
		}
		for _, r := range ResolveCitations(in.Text, in.Style, resolve) {
			out = appendRun(out, r)
		}
	}
	return out
}

func appendRun(out []Inline, in Inline) []Inline {
	if in.IsLink() {
		return append(out, in)
	}
	return appendText(out, in.Text, in.Style)
}

func (c *converter) collect(parent ast.Node, style Style, out *[]Inline) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch v := n.(type) {
		case *ast.Text:
			s := string(v.Segment.Value(c.src))
			switch {
			case v.HardLineBreak():
				s += "\n"
			case v.SoftLineBreak():
				s += " "
			}
			*out = appendText(*out, s, style)
		case *ast.String:
			*out = appendText(*out, string(v.Value), style)
		case *ast.CodeSpan:
			*out = appendText(*out, c.plain(v), style|StyleCode)
		case *ast.Emphasis:
			s := style | StyleEmphasis
			if v.Level >= 2 {
				s = style | StyleStrong
			}
			c.collect(v, s, out)
		case *ast.Link:
			*out = append(*out, Inline{Text: c.plain(v), URL: string(v.Destination), Style: style})
		case *ast.AutoLink:
			*out = append(*out, Inline{Text: string(v.Label(c.src)), URL: string(v.URL(c.src)), Style: style})
		case *ast.Image:
			*out = append(*out, Inline{Text: c.plain(v), URL: string(v.Destination), Style: style})
		case *ast.RawHTML:
			var buf bytes.Buffer
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				buf.Write(seg.Value(c.src))
			}
			*out = appendText(*out, buf.String(), style)
		default:
			c.collect(n, style, out)
		}
	}
}

// plain returns the text content of n's inline children.
func (c *converter) plain(n ast.Node) string {
	var runs []Inline
	c.collect(n, 0, &runs)
	return InlineText(runs)
}
