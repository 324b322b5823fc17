// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages kept in a conversation.
// Older messages are dropped first.
const MaxMessages = 1000

// Conversation is an ordered list of exchanged messages. It is ephemeral:
// nothing persists it except an explicit export.
type Conversation struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// Append adds msg to the end of the conversation.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	if over := len(c.Messages) - MaxMessages; over > 0 {
		c.Messages = append([]*Message(nil), c.Messages[over:]...)
	}
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Last returns the most recent message, or nil.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Snapshot returns a copy of the message list. The messages themselves are
// shared since they are never modified after Append.
func (c *Conversation) Snapshot() []*Message {
	return append([]*Message(nil), c.Messages...)
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.Messages = c.Messages[:0]
	c.UpdatedAt = time.Now()
}

// Title returns the first user message, truncated, for use in export headers.
func (c *Conversation) Title() string {
	for _, m := range c.Messages {
		if m.IsUser() {
			r := []rune(m.Content)
			if len(r) > 60 {
				return string(r[:57]) + "..."
			}
			return m.Content
		}
	}
	return "New conversation"
}
