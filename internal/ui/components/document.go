// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
	"github.com/jeranaias/sonarchat/internal/util"
)

// =============================================================================
// DOCUMENT PAINTER
// =============================================================================

// MinPaintWidth is the narrowest width a document is laid out at.
const MinPaintWidth = 20

// Painter lays out a render.Document as styled terminal text.
type Painter struct {
	theme      *styles.Theme
	width      int
	hyperlinks bool
}

// NewPainter creates a painter that emits OSC 8 hyperlinks.
func NewPainter(theme *styles.Theme) *Painter {
	return &Painter{theme: theme, width: 80, hyperlinks: true}
}

// SetWidth sets the layout width in cells.
func (p *Painter) SetWidth(width int) {
	p.width = max(width, MinPaintWidth)
}

// Width returns the layout width.
func (p *Painter) Width() int {
	return p.width
}

// SetHyperlinks switches between OSC 8 links and "text (url)" output.
func (p *Painter) SetHyperlinks(on bool) {
	p.hyperlinks = on
}

// Hyperlinks reports whether links are emitted as OSC 8 sequences.
func (p *Painter) Hyperlinks() bool {
	return p.hyperlinks
}

// Paint renders doc at the current width. Blocks are separated by a blank line.
func (p *Painter) Paint(doc *render.Document) string {
	if doc == nil {
		return ""
	}
	return p.blocks(doc.Blocks, p.width)
}

// PaintText wraps plain text, keeping explicit line breaks.
func (p *Painter) PaintText(text string, style lipgloss.Style) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		wrapped := p.wrap(render.Text(line), p.width, style)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		out = append(out, wrapped...)
	}
	return strings.Join(out, "\n")
}

func (p *Painter) blocks(blocks []render.Block, width int) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := p.block(b, width); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (p *Painter) block(b render.Block, width int) string {
	switch b := b.(type) {
	case render.Heading:
		return strings.Join(p.wrap(b.Inlines, width, p.headingStyle(b.Level)), "\n")
	case render.Paragraph:
		return strings.Join(p.wrap(b.Inlines, width, p.theme.Paragraph), "\n")
	case render.List:
		return p.list(b, width)
	case render.Table:
		return p.table(b, width)
	case render.CodeBlock:
		return RenderCodeBlock(p.theme, b.Code, b.Language, width)
	case render.Quote:
		inner := p.blocks(b.Blocks, width-p.theme.Quote.GetHorizontalFrameSize())
		return p.theme.Quote.Render(inner)
	case render.Rule:
		return p.theme.Rule.Render(strings.Repeat("─", width))
	case render.Section:
		return p.section(b, width)
	default:
		return ""
	}
}

func (p *Painter) headingStyle(level int) lipgloss.Style {
	switch level {
	case 1:
		return p.theme.Heading1
	case 2:
		return p.theme.Heading2
	default:
		return p.theme.Heading3
	}
}

func (p *Painter) section(s render.Section, width int) string {
	indent := ""
	if s.Indent {
		indent = "  "
	}
	inner := width - len(indent)
	var parts []string
	if s.Label != "" {
		parts = append(parts, p.theme.SectionLabel.Render(s.Label))
	}
	if body := p.blocks(s.Blocks, inner); body != "" {
		parts = append(parts, body)
	}
	out := strings.Join(parts, "\n")
	if indent == "" {
		return out
	}
	return indentLines(out, indent, indent)
}

func (p *Painter) list(l render.List, width int) string {
	start := max(l.Start, 1)
	markers := make([]string, len(l.Items))
	markerWidth := 0
	for i := range l.Items {
		if l.Ordered {
			markers[i] = strconv.Itoa(start+i) + ". "
		} else {
			markers[i] = "• "
		}
		markerWidth = max(markerWidth, util.StringWidth(markers[i]))
	}

	items := make([]string, 0, len(l.Items))
	for i, item := range l.Items {
		body := p.blocks(item.Blocks, width-markerWidth)
		if body == "" {
			body = " "
		}
		pad := strings.Repeat(" ", markerWidth-util.StringWidth(markers[i]))
		first := pad + p.theme.ListBullet.Render(markers[i])
		items = append(items, indentLines(body, first, strings.Repeat(" ", markerWidth)))
	}
	return strings.Join(items, "\n")
}

func (p *Painter) table(t render.Table, width int) string {
	header := make([]string, len(t.Header))
	for i, cell := range t.Header {
		header[i] = p.flat(cell, lipgloss.NewStyle())
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = p.flat(cell, lipgloss.NewStyle())
		}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.theme.TableBorder).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := p.theme.TableCell
			if row == table.HeaderRow {
				st = p.theme.TableHeader
			}
			if col < len(t.Align) {
				switch t.Align[col] {
				case render.AlignCenter:
					st = st.Align(lipgloss.Center)
				case render.AlignRight:
					st = st.Align(lipgloss.Right)
				}
			}
			return st
		})

	out := tbl.String()
	if lipgloss.Width(out) > width {
		out = tbl.Width(width).String()
	}
	return out
}

// =============================================================================
// INLINE LAYOUT
// =============================================================================

// word is a run of inlines with no whitespace between them. It never breaks
// across lines.
type word struct {
	text  strings.Builder
	width int
}

// flat renders inlines on a single line.
func (p *Painter) flat(inlines []render.Inline, base lipgloss.Style) string {
	words := p.words(inlines, base)
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.text.String()
	}
	return strings.Join(parts, " ")
}

// wrap lays inlines out in lines no wider than width. A word wider than
// width gets a line of its own.
func (p *Painter) wrap(inlines []render.Inline, width int, base lipgloss.Style) []string {
	words := p.words(inlines, base)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, w := range words {
		if lineWidth > 0 && lineWidth+1+w.width > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(" ")
			lineWidth++
		}
		line.WriteString(w.text.String())
		lineWidth += w.width
	}
	return append(lines, line.String())
}

func (p *Painter) words(inlines []render.Inline, base lipgloss.Style) []*word {
	var words []*word
	space := true
	emit := func(styled string, width int) {
		if space || len(words) == 0 {
			words = append(words, &word{})
		}
		w := words[len(words)-1]
		w.text.WriteString(styled)
		w.width += width
		space = false
	}

	for _, in := range inlines {
		st := p.inlineStyle(in, base)
		if in.IsLink() {
			if in.Text == "" {
				continue
			}
			emit(p.link(in, st), util.StringWidth(in.Text))
			if !p.hyperlinks {
				space = true
				suffix := "(" + in.URL + ")"
				emit(p.theme.Muted.Render(suffix), util.StringWidth(suffix))
			}
			continue
		}
		s := in.Text
		for s != "" {
			if i := strings.IndexFunc(s, notSpace); i != 0 {
				space = true
				if i < 0 {
					break
				}
				s = s[i:]
				continue
			}
			end := strings.IndexFunc(s, unicode.IsSpace)
			if end < 0 {
				end = len(s)
			}
			emit(st.Render(s[:end]), util.StringWidth(s[:end]))
			s = s[end:]
		}
	}
	return words
}

func notSpace(r rune) bool {
	return !unicode.IsSpace(r)
}

func (p *Painter) inlineStyle(in render.Inline, base lipgloss.Style) lipgloss.Style {
	st := base
	switch {
	case in.IsLink():
		st = p.theme.Link
	case in.Style.Has(render.StyleCode):
		return p.theme.InlineCode
	}
	if in.Style.Has(render.StyleStrong) {
		st = st.Bold(true)
	}
	if in.Style.Has(render.StyleEmphasis) {
		st = st.Italic(true)
	}
	return st
}

func (p *Painter) link(in render.Inline, st lipgloss.Style) string {
	label := st.Render(in.Text)
	if !p.hyperlinks {
		return label
	}
	return termenv.Hyperlink(in.URL, label)
}

// indentLines prefixes the first line of s with first and the rest with rest.
func indentLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = first + line
		} else {
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}
