// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sonarchat/internal/model"
)

func structured(content string) *model.Message {
	return model.NewStructuredReply(content, nil)
}

func flatReply(content string, citations ...string) *model.Message {
	msg := model.NewMessage(model.RoleAssistant, content)
	msg.Citations = citations
	return msg
}

// findLinks returns every link inline whose text is text.
func findLinks(doc *Document, text string) []Inline {
	var out []Inline
	doc.Walk(func(b Block) bool {
		for _, run := range blockInlines(b) {
			for _, in := range run {
				if in.IsLink() && in.Text == text {
					out = append(out, in)
				}
			}
		}
		return true
	})
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestRender_ValidArticle(t *testing.T) {
	r := New()
	doc := r.Render(structured(`{"title":"T","sections":[{"heading":"H1","content":"intro [1]"}],"citations":[{"number":1,"url":"https://x.test"}]}`))

	assert.Equal(t, []string{"T", "H1", LabelCitations}, doc.Headings())

	links := findLinks(doc, "[1]")
	require.Len(t, links, 1)
	assert.Equal(t, "https://x.test", links[0].URL)

	require.GreaterOrEqual(t, len(doc.Blocks), 3)
	assert.Equal(t, Paragraph{Inlines: []Inline{
		{Text: "intro "},
		{Text: "[1]", URL: "https://x.test"},
	}}, doc.Blocks[2])

	assert.Equal(t, "# T\n\n## H1\n\nintro [[1]](https://x.test)\n\n### Citations\n\n- [1] [https://x.test](https://x.test)\n",
		doc.Markdown())
}

func TestRender_MalformedJSONFallsBack(t *testing.T) {
	r := New()
	msg := structured("{not json")

	var doc *Document
	require.NotPanics(t, func() { doc = r.Render(msg) })
	assert.Equal(t, r.Markdown("{not json"), doc)
	assert.Equal(t, "{not json", doc.PlainText())
}

func TestRender_FallbackDoesNotResolveCitations(t *testing.T) {
	r := New()
	msg := model.NewStructuredReply("plain answer [1]", []string{"https://a.test"})
	doc := r.Render(msg)
	assert.Empty(t, doc.Links())
	assert.Equal(t, r.Markdown("plain answer [1]"), doc)
}

func TestRender_UnresolvedFlatMarker(t *testing.T) {
	r := New()
	doc := r.Render(flatReply("see [5]", "https://a.test", "https://b.test"))

	require.NotEmpty(t, doc.Blocks)
	assert.Equal(t, Paragraph{Inlines: []Inline{{Text: "see [5]"}}}, doc.Blocks[0])
	assert.Empty(t, findLinks(doc, "[5]"))
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, doc.Links())
}

func TestRender_FlatPositionalCitations(t *testing.T) {
	r := New()
	doc := r.Render(flatReply("Go [2] and *Rust [1]*.", "https://a.test", "https://b.test"))

	p, ok := doc.Blocks[0].(Paragraph)
	require.True(t, ok)
	assert.Equal(t, []Inline{
		{Text: "Go "},
		{Text: "[2]", URL: "https://b.test"},
		{Text: " and "},
		{Text: "Rust ", Style: StyleEmphasis},
		{Text: "[1]", URL: "https://a.test", Style: StyleEmphasis},
		{Text: "."},
	}, p.Inlines)

	last, ok := doc.Blocks[len(doc.Blocks)-1].(Section)
	require.True(t, ok)
	assert.Equal(t, LabelCitations, last.Label)
}

func TestRender_FlatWithoutCitations(t *testing.T) {
	doc := New().Render(flatReply("text [1]"))
	assert.Len(t, doc.Blocks, 1)
	assert.Empty(t, doc.Links())
}

func TestRender_CodeSpanMarkersStayLiteral(t *testing.T) {
	doc := New().Render(flatReply("use `arr[1]` here [1]", "https://a.test"))
	p := doc.Blocks[0].(Paragraph)
	assert.Equal(t, []Inline{
		{Text: "use "},
		{Text: "arr[1]", Style: StyleCode},
		{Text: " here "},
		{Text: "[1]", URL: "https://a.test"},
	}, p.Inlines)
}

func TestRender_UserMessageVerbatim(t *testing.T) {
	msg := model.NewUserMessage("# not a heading [1]")
	msg.Citations = []string{"https://a.test"}
	doc := New().Render(msg)
	assert.Equal(t, &Document{Blocks: []Block{Paragraph{Inlines: []Inline{{Text: "# not a heading [1]"}}}}}, doc)
}

func TestRender_ErrorReplyIsPlain(t *testing.T) {
	doc := New().Render(model.NewErrorReply())
	assert.Equal(t, model.ErrorReply, doc.PlainText())
	assert.Empty(t, doc.Links())
}

// =============================================================================
// ARTICLE DETAILS
// =============================================================================

func TestRender_ArticleByDeclaredNumber(t *testing.T) {
	doc := New().Render(structured(`{"title":"T","sections":[{"heading":"H","content":"a [7] b [3] c [4]"}],
		"citations":[{"number":3,"url":"https://three.test"},{"number":7,"url":"https://seven.test"}]}`))

	p := doc.Blocks[2].(Paragraph)
	assert.Equal(t, []Inline{
		{Text: "a "},
		{Text: "[7]", URL: "https://seven.test"},
		{Text: " b "},
		{Text: "[3]", URL: "https://three.test"},
		{Text: " c [4]"},
	}, p.Inlines)
}

func TestRender_ArticleWithUnusableCitationNumber(t *testing.T) {
	r := New()
	doc := r.Render(structured(`{"title":"T","sections":[{"heading":"H1","content":"intro [1] and [2]"}],` +
		`"citations":[{"number":null,"url":"https://a.test"},{"number":2,"url":"https://b.test"}]}`))

	assert.Equal(t, []string{"T", "H1", LabelCitations}, doc.Headings())
	assert.Empty(t, findLinks(doc, "[1]"))

	links := findLinks(doc, "[2]")
	require.Len(t, links, 1)
	assert.Equal(t, "https://b.test", links[0].URL)
	assert.Contains(t, doc.PlainText(), "intro [1] and [2]")
	assert.Contains(t, doc.Markdown(), "- [https://a.test](https://a.test)\n- [2] [https://b.test](https://b.test)\n")
}

func TestRender_ArticleSubsectionsAndTable(t *testing.T) {
	doc := New().Render(structured(`{
		"title": "Chips",
		"sections": [{
			"heading": "Overview",
			"content": "Intro [1].\n\n- point one [1]\n- point two",
			"subsections": [{"heading": "Detail", "content": "Deep [2]."}]
		}],
		"summary_table": "| Chip | Cores |\n|:-----|------:|\n| A | 8 |\n| B | 16 |",
		"citations": [{"number": 1, "url": "https://one.test"}, {"number": 2, "url": "https://two.test"}]
	}`))

	assert.Equal(t, []string{"Chips", "Overview", "Detail", LabelSummaryTable, LabelCitations}, doc.Headings())

	var sub *Section
	var table *Table
	var list *List
	for _, b := range doc.Blocks {
		switch v := b.(type) {
		case Section:
			sub = &v
		case Table:
			table = &v
		case List:
			if list == nil {
				list = &v
			}
		}
	}
	require.NotNil(t, sub)
	assert.True(t, sub.Indent)

	require.NotNil(t, list)
	item := list.Items[0].Blocks[0].(Paragraph)
	assert.Equal(t, "https://one.test", item.Inlines[1].URL)

	require.NotNil(t, table)
	assert.Equal(t, "Chip", InlineText(table.Header[0]))
	assert.Equal(t, []Alignment{AlignLeft, AlignRight}, table.Align)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "16", InlineText(table.Rows[1][1]))

	assert.Equal(t, []string{"https://one.test", "https://one.test", "https://two.test", "https://one.test", "https://two.test"}, doc.Links())
}

// =============================================================================
// RESEARCH
// =============================================================================

func TestRender_Research(t *testing.T) {
	doc := New().Render(structured(`{"summary":"S","analysis":"A","methodology":"M",
		"findings":[{"point":"P1","evidence":"E1","citations":["1","2"]}],
		"limitations":"L","sources":["https://src.test"],"nextSteps":"N","citations":["https://cit.test"]}`))

	var labels []string
	for _, b := range doc.Blocks {
		if s, ok := b.(Section); ok {
			labels = append(labels, s.Label)
		}
	}
	assert.Equal(t, []string{LabelSummary, LabelAnalysis, LabelFindings, LabelMethodology,
		LabelLimitations, LabelNextSteps, LabelCitations, LabelSources}, labels)

	findings := doc.Blocks[2].(Section).Blocks[0].(List)
	assert.True(t, findings.Ordered)
	require.Len(t, findings.Items, 1)
	assert.Equal(t, "Citations: 1, 2", InlineText(findings.Items[0].Blocks[2].(Paragraph).Inlines))

	assert.Equal(t, []string{"https://cit.test", "https://src.test"}, doc.Links())
}

func TestRender_ResearchWithoutCitations(t *testing.T) {
	doc := New().Render(structured(`{"summary":"S","sources":[]}`))
	for _, b := range doc.Blocks {
		if s, ok := b.(Section); ok {
			assert.NotEqual(t, LabelCitations, s.Label)
		}
	}
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestRender_Idempotent(t *testing.T) {
	r := New()
	msgs := []*model.Message{
		structured(`{"title":"T","sections":[{"heading":"H","content":"x [1]"}],"citations":[{"number":1,"url":"u"}]}`),
		structured(`{"summary":"s"}`),
		structured("{broken"),
		flatReply("a [1] **b**", "https://a.test"),
		model.NewUserMessage("hi"),
	}
	for _, msg := range msgs {
		assert.Equal(t, r.Render(msg), r.Render(msg))
	}
}

func TestRender_NilMessage(t *testing.T) {
	assert.Empty(t, New().Render(nil).Blocks)
}

func TestDocument_MarkdownCodeAndQuote(t *testing.T) {
	doc := New().Markdown("> quoted\n\n```go\nfmt.Println(1)\n```\n\n---")
	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, CodeBlock{Language: "go", Code: "fmt.Println(1)\n"}, doc.Blocks[1])
	assert.Equal(t, "> quoted\n\n```go\nfmt.Println(1)\n```\n\n---\n", doc.Markdown())
}

func TestDocument_MarkdownEmphasisAroundCitation(t *testing.T) {
	md := New().Render(flatReply("*see [1]* now", "https://7.test")).Markdown()
	assert.Contains(t, md, "*see* [*[1]*](https://7.test) now")
	assert.NotContains(t, md, "*see *")
}
