// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/util"
)

// ErrEmptyConversation is returned when there is nothing to export.
var ErrEmptyConversation = errors.New("conversation has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation into one file format.
type Exporter interface {
	// Export returns the file content for conv.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures the exporters.
type Options struct {
	// IncludeMetadata adds a header with title, model and dates.
	IncludeMetadata bool

	// IncludeTimestamps adds the time to each message label.
	IncludeTimestamps bool

	// Model is recorded in the metadata header.
	Model string

	// Theme for HTML export, "light" or "dark".
	Theme string
}

// DefaultOptions returns the options used by /export.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ForPath picks the exporter matching the extension of path: .md,
// .markdown, .json, .html or .htm.
func ForPath(path string, r *render.Renderer, opts *Options) (Exporter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return NewMarkdownExporter(r, opts), nil
	case ".json":
		return NewJSONExporter(opts), nil
	case ".html", ".htm":
		return NewHTMLExporter(r, opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use .md, .json or .html)", filepath.Ext(path))
	}
}

// WriteFile exports conv and writes it to path atomically.
func WriteFile(path string, conv *model.Conversation, exporter Exporter) error {
	content, err := exporter.Export(conv)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// DefaultFilename builds a file name from the conversation title.
func DefaultFilename(conv *model.Conversation, ext string) string {
	return fmt.Sprintf("sonarchat_%s_%s%s",
		sanitizeFilename(conv.Title()),
		time.Now().Format("20060102_150405"),
		ext)
}

func validate(conv *model.Conversation) error {
	if conv == nil {
		return errors.New("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return ErrEmptyConversation
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names on
// any platform.
func sanitizeFilename(s string) string {
	const maxLen = 50
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "conversation"
	}
	return b.String()
}

func formatTimestamp(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

func title(conv *model.Conversation) string {
	if t := conv.Title(); t != "" {
		return t
	}
	return "Conversation"
}
