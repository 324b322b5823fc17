// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/model"
)

// Labels used for the fixed parts of structured replies.
const (
	LabelSummaryTable = "Summary"
	LabelCitations    = "Citations"
	LabelSources      = "Sources"
	LabelSummary      = "Summary"
	LabelAnalysis     = "Analysis"
	LabelFindings     = "Key Findings"
	LabelMethodology  = "Methodology"
	LabelLimitations  = "Limitations"
	LabelNextSteps    = "Next Steps"
)

// Renderer converts messages to Documents. It holds no per-message state;
// rendering the same message twice yields equal Documents.
type Renderer struct {
	md     goldmark.Markdown
	logger *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger.Named("render")
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md:     newMarkdown(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts msg to a Document.
//
// User messages are shown verbatim. Structured replies are parsed as an
// Article or Research; content that does not parse is rendered as markdown
// without citation links. Any other message is markdown whose "[k]" markers
// link to msg.Citations[k-1], followed by the citation list.
func (r *Renderer) Render(msg *model.Message) *Document {
	if msg == nil {
		return &Document{}
	}
	if msg.Role == model.RoleUser {
		return &Document{Blocks: []Block{Paragraph{Inlines: Text(msg.Content)}}}
	}
	if msg.Structured {
		reply, err := ParseReply(msg.Content)
		if err != nil {
			r.logger.Debug("structured reply fell back to markdown",
				zap.String("message", msg.ID), zap.Error(err))
			return r.Markdown(msg.Content)
		}
		switch v := reply.(type) {
		case *Article:
			return r.Article(v)
		case *Research:
			return r.Research(v)
		}
	}
	return r.flat(msg)
}

// Markdown renders src as markdown with no citation resolution.
func (r *Renderer) Markdown(src string) *Document {
	return &Document{Blocks: parseMarkdown(r.md, src, nil)}
}

func (r *Renderer) flat(msg *model.Message) *Document {
	doc := &Document{Blocks: parseMarkdown(r.md, msg.Content, ByPosition(msg.Citations))}
	if msg.HasCitations() {
		list := List{Ordered: true, Start: 1}
		for _, url := range msg.Citations {
			list.Items = append(list.Items, linkItem(nil, url))
		}
		doc.Blocks = append(doc.Blocks, Section{Label: LabelCitations, Blocks: []Block{list}})
	}
	return doc
}

// =============================================================================
// ARTICLE
// =============================================================================

// Article renders the title, sections with nested subsections, the optional
// summary table and the numbered citation list.
func (r *Renderer) Article(a *Article) *Document {
	resolve := ByNumber(a.Citations)
	doc := &Document{}
	if a.Title != "" {
		doc.Blocks = append(doc.Blocks, Heading{Level: 1, Inlines: Text(a.Title)})
	}

	for _, sec := range a.Sections {
		doc.Blocks = append(doc.Blocks, Heading{Level: 2, Inlines: Text(sec.Heading)})
		doc.Blocks = append(doc.Blocks, parseMarkdown(r.md, sec.Content, resolve)...)
		if len(sec.Subsections) == 0 {
			continue
		}
		nested := Section{Indent: true}
		for _, sub := range sec.Subsections {
			nested.Blocks = append(nested.Blocks, Heading{Level: 3, Inlines: Text(sub.Heading)})
			nested.Blocks = append(nested.Blocks, parseMarkdown(r.md, sub.Content, resolve)...)
		}
		doc.Blocks = append(doc.Blocks, nested)
	}

	if strings.TrimSpace(a.SummaryTable) != "" {
		doc.Blocks = append(doc.Blocks, Heading{Level: 3, Inlines: Text(LabelSummaryTable)})
		doc.Blocks = append(doc.Blocks, parseMarkdown(r.md, a.SummaryTable, nil)...)
	}

	doc.Blocks = append(doc.Blocks, Heading{Level: 3, Inlines: Text(LabelCitations)})
	if len(a.Citations) > 0 {
		list := List{}
		for _, c := range a.Citations {
			var prefix []Inline
			if c.Number >= 0 {
				prefix = Text("[" + strconv.Itoa(int(c.Number)) + "] ")
			}
			list.Items = append(list.Items, linkItem(prefix, c.URL))
		}
		doc.Blocks = append(doc.Blocks, list)
	}
	return doc
}

// =============================================================================
// RESEARCH
// =============================================================================

// Research renders the labeled blocks of a research reply followed by its
// citation and source link lists.
func (r *Renderer) Research(res *Research) *Document {
	doc := &Document{}
	labeled := func(label, body string) {
		doc.Blocks = append(doc.Blocks, Section{Label: label, Blocks: paragraphs(body)})
	}

	labeled(LabelSummary, res.Summary)
	labeled(LabelAnalysis, res.Analysis)

	findings := List{Ordered: true, Start: 1}
	for _, f := range res.Findings {
		item := ListItem{Blocks: []Block{
			Paragraph{Inlines: []Inline{{Text: f.Point, Style: StyleStrong}}},
		}}
		item.Blocks = append(item.Blocks, paragraphs(f.Evidence)...)
		if len(f.Citations) > 0 {
			item.Blocks = append(item.Blocks, Paragraph{Inlines: []Inline{{
				Text:  "Citations: " + strings.Join(f.Citations, ", "),
				Style: StyleEmphasis,
			}}})
		}
		findings.Items = append(findings.Items, item)
	}
	var findingBlocks []Block
	if len(findings.Items) > 0 {
		findingBlocks = []Block{findings}
	}
	doc.Blocks = append(doc.Blocks, Section{Label: LabelFindings, Blocks: findingBlocks})

	labeled(LabelMethodology, res.Methodology)
	labeled(LabelLimitations, res.Limitations)
	labeled(LabelNextSteps, res.NextSteps)

	if len(res.Citations) > 0 {
		doc.Blocks = append(doc.Blocks, Section{Label: LabelCitations, Blocks: []Block{linkList(res.Citations)}})
	}
	var sources []Block
	if len(res.Sources) > 0 {
		sources = []Block{linkList(res.Sources)}
	}
	doc.Blocks = append(doc.Blocks, Section{Label: LabelSources, Blocks: sources})
	return doc
}

// paragraphs splits plain text on blank lines.
func paragraphs(s string) []Block {
	var out []Block
	for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, Paragraph{Inlines: Text(p)})
		}
	}
	return out
}

func linkList(urls []string) List {
	list := List{}
	for _, u := range urls {
		list.Items = append(list.Items, linkItem(nil, u))
	}
	return list
}

func linkItem(prefix []Inline, url string) ListItem {
	inlines := append(append([]Inline(nil), prefix...), Link(url, url))
	if url == "" {
		inlines = prefix
	}
	return ListItem{Blocks: []Block{Paragraph{Inlines: inlines}}}
}
