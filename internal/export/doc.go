// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation to Markdown, JSON or HTML.
//
// Markdown and HTML go through the renderer, so structured replies are
// exported as articles with their citations resolved rather than as raw
// JSON. The JSON export keeps the raw messages.
//
// # Usage
//
//	exporter, err := export.ForPath("chat.md", renderer, nil)
//	if err != nil {
//	    return err
//	}
//	err = export.WriteFile("chat.md", conv, exporter)
package export
