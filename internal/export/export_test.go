// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/render"
)

const article = `{"title":"Go","sections":[{"heading":"Intro","content":"Go is fast [1]."}],"citations":[{"number":1,"url":"https://go.dev"}]}`

func sampleConversation() *model.Conversation {
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("Tell me about Go"))
	conv.Append(model.NewStructuredReply(article, []string{"https://go.dev"}))
	return conv
}

func TestForPath(t *testing.T) {
	r := render.New()
	for path, ext := range map[string]string{
		"a.md": ".md", "a.MARKDOWN": ".md", "a.json": ".json", "a.html": ".html", "a.htm": ".html",
	} {
		e, err := ForPath(path, r, nil)
		require.NoError(t, err, path)
		assert.Equal(t, ext, e.FileExtension(), path)
	}
	_, err := ForPath("a.pdf", r, nil)
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestExport_EmptyConversation(t *testing.T) {
	for _, e := range []Exporter{NewMarkdownExporter(nil, nil), NewJSONExporter(nil), NewHTMLExporter(nil, nil)} {
		_, err := e.Export(model.NewConversation())
		assert.ErrorIs(t, err, ErrEmptyConversation)
		_, err = e.Export(nil)
		assert.Error(t, err)
	}
}

func TestMarkdownExporter_RendersArticle(t *testing.T) {
	opts := DefaultOptions()
	opts.Model = "sonar"
	out, err := NewMarkdownExporter(nil, opts).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: Tell me about Go\nmodel: sonar\n"))
	assert.Contains(t, md, "# Tell me about Go")
	assert.Contains(t, md, "### You")
	assert.Contains(t, md, "### Sonar")
	assert.Contains(t, md, "## Intro")
	assert.Contains(t, md, "Go is fast [[1]](https://go.dev).")
	assert.NotContains(t, md, `"sections"`, "structured replies are rendered, not dumped")
}

func TestMarkdownExporter_FrontmatterIsValidYAML(t *testing.T) {
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("title: with \"quotes\"\nand newline"))
	out, err := NewMarkdownExporter(nil, nil).Export(conv)
	require.NoError(t, err)

	parts := strings.SplitN(string(out), "---\n", 3)
	require.Len(t, parts, 3)
	assert.Contains(t, parts[1], "title: ")
	assert.NotContains(t, parts[1], "\nand newline\n", "newline must not break out of the title value")
}

func TestJSONExporter_KeepsRawContent(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleConversation())
	require.NoError(t, err)

	var decoded struct {
		Generator    string             `json:"generator"`
		Conversation model.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "sonarchat", decoded.Generator)
	require.Len(t, decoded.Conversation.Messages, 2)
	assert.Equal(t, article, decoded.Conversation.Messages[1].Content)
	assert.True(t, decoded.Conversation.Messages[1].Structured)
}

func TestHTMLExporter_LinksAndEscaping(t *testing.T) {
	conv := sampleConversation()
	conv.Append(model.NewUserMessage("<script>alert(1)</script>"))

	out, err := NewHTMLExporter(nil, nil).Export(conv)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `<a href="https://go.dev" target="_blank" rel="noopener noreferrer">[1]</a>`)
	assert.Contains(t, page, "<h2>Intro</h2>")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.NotContains(t, page, "<script>alert")
	assert.Contains(t, page, `class="dark-theme"`)
}

func TestHTMLExporter_RejectsUnsafeLinks(t *testing.T) {
	var sb strings.Builder
	writeInlines(&sb, []render.Inline{render.Link("x", "javascript:alert(1)")})
	assert.Equal(t, "x", sb.String())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chat.md")
	e, err := ForPath(path, nil, nil)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, sampleConversation(), e))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Intro")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c_d", sanitizeFilename(`a/b:c d`))
	assert.Equal(t, "conversation", sanitizeFilename(""))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("x", 80))), 50)

	name := DefaultFilename(sampleConversation(), ".md")
	assert.True(t, strings.HasPrefix(name, "sonarchat_Tell_me_about_Go_"))
	assert.True(t, strings.HasSuffix(name, ".md"))
}
