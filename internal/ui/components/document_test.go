// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/storage"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
	"github.com/jeranaias/sonarchat/internal/util"
)

var escapes = regexp.MustCompile("\x1b\\[[0-9;]*m|\x1b\\]8;;[^\x1b\a]*(\x1b\\\\|\a)")

func plain(s string) string {
	return escapes.ReplaceAllString(s, "")
}

func testTheme() *styles.Theme {
	return styles.NewTheme(storage.ThemeDark)
}

func TestPainter_WrapsParagraphs(t *testing.T) {
	p := NewPainter(testTheme())
	p.SetWidth(20)
	doc := &render.Document{Blocks: []render.Block{
		render.Paragraph{Inlines: render.Text("the quick brown fox jumps over the lazy dog")},
	}}

	out := plain(p.Paint(doc))
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, util.StringWidth(line), 20, line)
	}
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(strings.Fields(out), " "))
}

func TestPainter_MinimumWidth(t *testing.T) {
	p := NewPainter(testTheme())
	p.SetWidth(3)
	assert.Equal(t, MinPaintWidth, p.Width())
}

func TestPainter_PunctuationStaysWithLink(t *testing.T) {
	p := NewPainter(testTheme())
	p.SetHyperlinks(false)
	doc := &render.Document{Blocks: []render.Block{
		render.Paragraph{Inlines: []render.Inline{
			{Text: "Go is fast "},
			render.Link("[1]", "https://go.dev"),
			{Text: "."},
		}},
	}}

	assert.Equal(t, "Go is fast [1] (https://go.dev).", plain(p.Paint(doc)))
}

func TestPainter_HyperlinksUseOSC8(t *testing.T) {
	p := NewPainter(testTheme())
	doc := &render.Document{Blocks: []render.Block{
		render.Paragraph{Inlines: []render.Inline{render.Link("[1]", "https://go.dev")}},
	}}

	out := p.Paint(doc)
	assert.Contains(t, out, "\x1b]8;;https://go.dev")
	assert.NotContains(t, plain(out), "https://go.dev")
	assert.Equal(t, "[1]", plain(out))
}

func TestPainter_Lists(t *testing.T) {
	p := NewPainter(testTheme())
	item := func(s string) render.ListItem {
		return render.ListItem{Blocks: []render.Block{render.Paragraph{Inlines: render.Text(s)}}}
	}
	doc := &render.Document{Blocks: []render.Block{
		render.List{Ordered: true, Start: 9, Items: []render.ListItem{item("nine"), item("ten")}},
		render.List{Items: []render.ListItem{item("dot")}},
	}}

	out := plain(p.Paint(doc))
	assert.Contains(t, out, " 9. nine")
	assert.Contains(t, out, "10. ten")
	assert.Contains(t, out, "• dot")
}

func TestPainter_SectionsIndentAndLabel(t *testing.T) {
	p := NewPainter(testTheme())
	doc := &render.Document{Blocks: []render.Block{
		render.Section{Label: "Citations", Blocks: []render.Block{
			render.Paragraph{Inlines: render.Text("top")},
			render.Section{Indent: true, Blocks: []render.Block{render.Paragraph{Inlines: render.Text("nested")}}},
		}},
	}}

	lines := strings.Split(plain(p.Paint(doc)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Citations", lines[0])
	assert.Equal(t, "top", lines[1])
	assert.Equal(t, "  nested", lines[3])
}

func TestPainter_TableAndRule(t *testing.T) {
	p := NewPainter(testTheme())
	p.SetWidth(40)
	doc := &render.Document{Blocks: []render.Block{
		render.Table{
			Header: [][]render.Inline{render.Text("Aspect"), render.Text("Notes")},
			Rows:   [][][]render.Inline{{render.Text("Speed"), render.Text("fast")}},
		},
		render.Rule{},
	}}

	out := plain(p.Paint(doc))
	assert.Contains(t, out, "Aspect")
	assert.Contains(t, out, "Speed")
	assert.Contains(t, out, strings.Repeat("─", 40))
}

func TestPainter_CodeBlock(t *testing.T) {
	p := NewPainter(testTheme())
	doc := &render.Document{Blocks: []render.Block{
		render.CodeBlock{Language: "go", Code: "package main\n"},
	}}

	out := plain(p.Paint(doc))
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "package main")
	assert.Empty(t, RenderCodeBlock(testTheme(), "\n", "go", 40))
}

func TestPainter_RendersStructuredReply(t *testing.T) {
	r := render.New()
	msg := model.NewStructuredReply(
		`{"title":"Go","sections":[{"heading":"Intro","content":"Go is fast [1]."}],"citations":[{"number":1,"url":"https://go.dev"}]}`,
		[]string{"https://go.dev"})
	p := NewPainter(testTheme())
	p.SetHyperlinks(false)

	out := plain(p.Paint(r.Render(msg)))
	assert.Contains(t, out, "Intro")
	assert.Contains(t, out, "Go is fast [1] (https://go.dev).")
	assert.Empty(t, p.Paint(nil))
}
