// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns chat messages into a display tree.
//
// A Document is a list of Blocks (headings, paragraphs, lists, tables, code,
// labeled sections) made of Inlines (styled text or links). It carries no
// terminal styling; painters in internal/ui/components and the exporters
// consume it.
//
// Assistant replies requested as structured output are parsed into a Reply,
// which is either an *Article or a *Research value. Inline "[n]" citation
// markers are rewritten into links: by declared citation number for
// articles, by list position for plain replies. Content that is not valid
// JSON falls back to markdown without citation links.
//
// # Usage
//
//	r := render.New(render.WithLogger(logger))
//	doc := r.Render(msg)
//	fmt.Print(doc.Markdown())
package render
