// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// MessageBubble renders one chat message. User messages are shown verbatim;
// assistant replies go through the renderer and painter.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool

	theme    *styles.Theme
	renderer *render.Renderer
	painter  *Painter
}

// NewMessageBubble creates a bubble for msg. A nil renderer uses render.New().
func NewMessageBubble(msg *model.Message, theme *styles.Theme, r *render.Renderer) *MessageBubble {
	if msg == nil {
		msg = &model.Message{Role: model.RoleSystem}
	}
	if r == nil {
		r = render.New()
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
		renderer:      r,
		painter:       NewPainter(theme),
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetHyperlinks controls OSC 8 link output.
func (b *MessageBubble) SetHyperlinks(on bool) {
	b.painter.SetHyperlinks(on)
}

// View renders the bubble.
func (b *MessageBubble) View() string {
	var box lipgloss.Style
	switch b.Message.Role {
	case model.RoleUser:
		box = b.theme.UserBubble
	case model.RoleAssistant:
		box = b.theme.AssistantBubble
	default:
		box = b.theme.SystemBubble
	}

	inner := b.Width - box.GetHorizontalFrameSize()
	b.painter.SetWidth(inner)

	var body string
	switch b.Message.Role {
	case model.RoleAssistant:
		body = b.painter.Paint(b.renderer.Render(b.Message))
	default:
		body = b.painter.PaintText(b.Message.Content, b.theme.Paragraph)
	}
	if body == "" {
		body = b.theme.Muted.Render("...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, b.header(), box.Render(body))
}

func (b *MessageBubble) header() string {
	parts := []string{b.theme.RoleLabel.Render(b.Message.Role.DisplayName())}
	if b.ShowTimestamp && !b.Message.Timestamp.IsZero() {
		parts = append(parts, b.theme.Timestamp.Render(b.Message.FormatTime()))
	}
	if b.Message.IsAssistant() && b.Message.HasCitations() {
		parts = append(parts, b.theme.Muted.Render(sourceCount(len(b.Message.Citations))))
	}
	return strings.Join(parts, " ")
}

func sourceCount(n int) string {
	if n == 1 {
		return "· 1 source"
	}
	return "· " + toStr(n) + " sources"
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

type bubbleKey struct {
	id         string
	width      int
	dark       bool
	hyperlinks bool
}

// MessageList renders a conversation. Rendered bubbles are cached by message
// ID, width and theme because messages never change after they are appended.
type MessageList struct {
	Messages   []*model.Message
	Width      int
	Hyperlinks bool

	theme    *styles.Theme
	renderer *render.Renderer
	cache    map[bubbleKey]string
}

// NewMessageList creates an empty list.
func NewMessageList(theme *styles.Theme, r *render.Renderer) *MessageList {
	if r == nil {
		r = render.New()
	}
	return &MessageList{
		Width:      80,
		Hyperlinks: true,
		theme:      theme,
		renderer:   r,
		cache:      make(map[bubbleKey]string),
	}
}

// SetMessages replaces the displayed messages.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
	if len(ml.cache) > 4*len(messages)+16 {
		clear(ml.cache)
	}
}

// SetWidth sets the width of every bubble.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages separated by blank lines.
func (ml *MessageList) View() string {
	parts := make([]string, 0, len(ml.Messages))
	for _, msg := range ml.Messages {
		if msg == nil {
			continue
		}
		key := bubbleKey{id: msg.ID, width: ml.Width, dark: ml.theme.IsDark, hyperlinks: ml.Hyperlinks}
		out, ok := ml.cache[key]
		if !ok || msg.ID == "" {
			bubble := NewMessageBubble(msg, ml.theme, ml.renderer)
			bubble.SetWidth(ml.Width)
			bubble.SetHyperlinks(ml.Hyperlinks)
			out = bubble.View()
			ml.cache[key] = out
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n\n")
}
