// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter writes a standalone page with embedded CSS. Citations
// become anchors that open in a new tab.
type HTMLExporter struct {
	renderer *render.Renderer
	options  *Options
}

// NewHTMLExporter creates an HTML exporter. A nil renderer uses the
// default one.
func NewHTMLExporter(r *render.Renderer, opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	if r == nil {
		r = render.New()
	}
	return &HTMLExporter{renderer: r, options: opts}
}

// Export converts conv to HTML.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title(conv))))
	sb.WriteString("<meta name=\"generator\" content=\"sonarchat\">\n")
	sb.WriteString(fmt.Sprintf("<meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n<div class=\"container\">\n", theme))

	if e.options.IncludeMetadata {
		e.writeHeader(&sb, conv)
	}

	sb.WriteString("<main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		e.writeMessage(&sb, msg)
	}
	sb.WriteString("</main>\n")

	sb.WriteString(fmt.Sprintf("<footer class=\"footer\">Exported from <strong>sonarchat</strong> on %s</footer>\n",
		formatTimestamp(time.Now())))
	sb.WriteString("</div>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) writeHeader(sb *strings.Builder, conv *model.Conversation) {
	sb.WriteString("<header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n<div class=\"metadata\">\n", html.EscapeString(title(conv))))
	if e.options.Model != "" {
		sb.WriteString(fmt.Sprintf("<span><strong>Model:</strong> %s</span>\n", html.EscapeString(e.options.Model)))
	}
	sb.WriteString(fmt.Sprintf("<span><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt)))
	sb.WriteString(fmt.Sprintf("<span><strong>Messages:</strong> %d</span>\n", len(conv.Messages)))
	sb.WriteString("</div>\n</header>\n")
}

func (e *HTMLExporter) writeMessage(sb *strings.Builder, msg *model.Message) {
	sb.WriteString(fmt.Sprintf("<section class=\"message %s-message\">\n", msg.Role))
	sb.WriteString("<div class=\"message-header\">")
	sb.WriteString(fmt.Sprintf("<span class=\"role-label\">%s</span>", html.EscapeString(msg.Role.DisplayName())))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("<span class=\"timestamp\">%s</span>", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("</div>\n<div class=\"message-content\">\n")
	writeBlocks(sb, e.renderer.Render(msg).Blocks)
	sb.WriteString("</div>\n</section>\n")
}

// writeBlocks serializes a rendered document to HTML.
func writeBlocks(sb *strings.Builder, blocks []render.Block) {
	for _, b := range blocks {
		switch b := b.(type) {
		case render.Heading:
			level := min(max(b.Level, 1), 6)
			sb.WriteString(fmt.Sprintf("<h%d>", level))
			writeInlines(sb, b.Inlines)
			sb.WriteString(fmt.Sprintf("</h%d>\n", level))
		case render.Paragraph:
			sb.WriteString("<p>")
			writeInlines(sb, b.Inlines)
			sb.WriteString("</p>\n")
		case render.List:
			tag := "ul"
			if b.Ordered {
				tag = "ol"
			}
			sb.WriteString("<" + tag)
			if b.Ordered && b.Start > 1 {
				sb.WriteString(" start=\"" + strconv.Itoa(b.Start) + "\"")
			}
			sb.WriteString(">\n")
			for _, item := range b.Items {
				sb.WriteString("<li>")
				writeBlocks(sb, item.Blocks)
				sb.WriteString("</li>\n")
			}
			sb.WriteString("</" + tag + ">\n")
		case render.Table:
			writeTable(sb, b)
		case render.CodeBlock:
			sb.WriteString("<div class=\"code-block\">")
			if b.Language != "" {
				sb.WriteString(fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(b.Language)))
			}
			sb.WriteString("<pre><code>")
			sb.WriteString(html.EscapeString(b.Code))
			sb.WriteString("</code></pre></div>\n")
		case render.Quote:
			sb.WriteString("<blockquote>\n")
			writeBlocks(sb, b.Blocks)
			sb.WriteString("</blockquote>\n")
		case render.Rule:
			sb.WriteString("<hr>\n")
		case render.Section:
			class := "section"
			if b.Indent {
				class += " indent"
			}
			sb.WriteString(fmt.Sprintf("<div class=\"%s\">\n", class))
			if b.Label != "" {
				sb.WriteString(fmt.Sprintf("<h4 class=\"section-label\">%s</h4>\n", html.EscapeString(b.Label)))
			}
			writeBlocks(sb, b.Blocks)
			sb.WriteString("</div>\n")
		}
	}
}

func writeTable(sb *strings.Builder, t render.Table) {
	align := func(i int) string {
		if i >= len(t.Align) {
			return ""
		}
		switch t.Align[i] {
		case render.AlignLeft:
			return " style=\"text-align:left\""
		case render.AlignCenter:
			return " style=\"text-align:center\""
		case render.AlignRight:
			return " style=\"text-align:right\""
		}
		return ""
	}

	sb.WriteString("<table>\n<thead><tr>")
	for i, cell := range t.Header {
		sb.WriteString("<th" + align(i) + ">")
		writeInlines(sb, cell)
		sb.WriteString("</th>")
	}
	sb.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for i, cell := range row {
			sb.WriteString("<td" + align(i) + ">")
			writeInlines(sb, cell)
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
}

func writeInlines(sb *strings.Builder, inlines []render.Inline) {
	for _, in := range inlines {
		text := html.EscapeString(in.Text)
		if in.Style.Has(render.StyleCode) {
			text = "<code class=\"inline-code\">" + text + "</code>"
		}
		if in.Style.Has(render.StyleEmphasis) {
			text = "<em>" + text + "</em>"
		}
		if in.Style.Has(render.StyleStrong) {
			text = "<strong>" + text + "</strong>"
		}
		if in.IsLink() && safeURL(in.URL) {
			text = fmt.Sprintf("<a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a>",
				html.EscapeString(in.URL), text)
		}
		sb.WriteString(text)
	}
}

// safeURL rejects javascript: and other non-web schemes in anchors.
func safeURL(u string) bool {
	lower := strings.ToLower(strings.TrimSpace(u))
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:")
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const pageCSS = `<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
:root {
  --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
  --font-mono: "SF Mono", Monaco, Inconsolata, "Fira Code", monospace;
}
.dark-theme {
  --bg-primary: #13191c; --bg-secondary: #1c2427; --bg-tertiary: #2a3539;
  --text-primary: #e4ecee; --text-secondary: #b3c2c6; --text-muted: #6f8489;
  --border-color: #2f3c40; --accent: #20b8cd; --accent-alt: #94d2bd;
}
.light-theme {
  --bg-primary: #ffffff; --bg-secondary: #f7f8f8; --bg-tertiary: #e8eeef;
  --text-primary: #13343b; --text-secondary: #3f5b61; --text-muted: #6f8489;
  --border-color: #d9e2e4; --accent: #1a7f8e; --accent-alt: #2e6f5e;
}
body { font-family: var(--font-sans); line-height: 1.6; color: var(--text-primary); background: var(--bg-primary); padding: 20px; }
.container { max-width: 900px; margin: 0 auto; background: var(--bg-secondary); border-radius: 12px; overflow: hidden; }
.header { padding: 32px; background: var(--bg-tertiary); border-bottom: 2px solid var(--border-color); }
.header h1 { font-size: 28px; margin-bottom: 12px; }
.metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; color: var(--text-secondary); }
.conversation { padding: 24px 32px; }
.message { margin-bottom: 24px; padding: 20px; border-radius: 8px; border-left: 4px solid transparent; }
.user-message { background: var(--bg-primary); border-left-color: var(--accent); }
.assistant-message { background: var(--bg-secondary); border-left-color: var(--accent-alt); }
.system-message { background: var(--bg-tertiary); border-left-color: var(--text-muted); }
.message-header { display: flex; justify-content: space-between; margin-bottom: 12px; font-size: 14px; }
.role-label { font-weight: 600; }
.timestamp { color: var(--text-muted); font-family: var(--font-mono); font-size: 13px; }
.message-content h1, .message-content h2, .message-content h3, .message-content h4 { margin: 16px 0 8px; }
.message-content p, .message-content ul, .message-content ol, .message-content table { margin-bottom: 12px; }
.message-content ul, .message-content ol { padding-left: 24px; }
.section.indent { padding-left: 20px; border-left: 2px solid var(--border-color); }
.section-label { color: var(--accent); }
a { color: var(--accent); }
table { border-collapse: collapse; }
th, td { border: 1px solid var(--border-color); padding: 6px 10px; }
blockquote { border-left: 3px solid var(--border-color); padding-left: 12px; color: var(--text-secondary); }
.code-block { margin: 16px 0; border-radius: 8px; overflow: hidden; border: 1px solid var(--border-color); }
.code-lang { padding: 6px 16px; background: var(--bg-tertiary); font-size: 12px; text-transform: uppercase; }
.code-block pre { padding: 16px; overflow-x: auto; font-family: var(--font-mono); font-size: 14px; }
.inline-code { font-family: var(--font-mono); font-size: 14px; padding: 1px 5px; background: var(--bg-tertiary); border-radius: 4px; }
.footer { padding: 20px 32px; text-align: center; font-size: 14px; color: var(--text-muted); border-top: 1px solid var(--border-color); }
@media print { body { padding: 0; } .message { page-break-inside: avoid; } }
</style>
`
