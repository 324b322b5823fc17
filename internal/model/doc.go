// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one exchanged message with role, content and optional citations
//   - Conversation: ordered, append-only list of messages
//   - ModelInfo: display information about a selectable completion model
//   - Role: message role enumeration (user, assistant, system)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("What is RISC-V?"))
//	conv.Append(model.NewStructuredReply(content, citations))
package model
