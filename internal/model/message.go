// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Sonar"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// ErrorReply is the assistant message shown in place of a failed reply.
const ErrorReply = "Sorry, there was an error processing your request."

// Message is a single exchanged message. Messages are not modified after
// they are appended to a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Citations are the source URLs returned with an assistant reply.
	// Inline "[n]" markers refer to Citations[n-1].
	Citations []string `json:"citations,omitempty"`

	// Structured marks an assistant reply whose content was requested as
	// article-shaped JSON.
	Structured bool `json:"structured,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewStructuredReply creates the assistant message for a successful
// structured query.
func NewStructuredReply(content string, citations []string) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Citations = slices.Clone(citations)
	msg.Structured = true
	return msg
}

// NewErrorReply creates the fixed assistant message that replaces a failed reply.
func NewErrorReply() *Message {
	return NewMessage(RoleAssistant, ErrorReply)
}

// IsUser returns true if this is a user message.
func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if this is an assistant message.
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// HasCitations reports whether the message carries any citation URLs.
func (m *Message) HasCitations() bool {
	return len(m.Citations) > 0
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Citations = slices.Clone(m.Citations)
	return &out
}

// FormatTime returns the message timestamp as "15:04".
func (m *Message) FormatTime() string {
	return m.Timestamp.Format("15:04")
}
