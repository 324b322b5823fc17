// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package perplexity

// Role is the author of a chat message on the wire.
type Role string

// Message roles accepted by the API.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of the request's message list.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Delta is the incremental message part of a choice. Non-streaming replies
// usually carry it empty.
type Delta struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Choice is one generated alternative.
type Choice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason"`
	Message      Message `json:"message"`
	Delta        Delta   `json:"delta"`
}

// Usage holds the token counters of a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResult is the decoded response envelope.
type CompletionResult struct {
	ID               string   `json:"id"`
	Model            string   `json:"model"`
	Object           string   `json:"object"`
	Created          int64    `json:"created"`
	Citations        []string `json:"citations"`
	Choices          []Choice `json:"choices"`
	Usage            Usage    `json:"usage"`
	RelatedQuestions []string `json:"related_questions,omitempty"`
}

// Content returns the first choice's message content.
func (r *CompletionResult) Content() (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", ErrNoChoices
	}
	return r.Choices[0].Message.Content, nil
}
