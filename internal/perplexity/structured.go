// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package perplexity

import (
	"context"
	"encoding/json"
)

// ArticlePrompt is the system instruction sent ahead of every structured query.
const ArticlePrompt = `You are a knowledgeable assistant. Format responses as structured articles with:
- A clear, concise title
- Well-organized sections with headings
- Subsections where appropriate for detailed breakdowns
- A summary table in markdown format if numerical/comparative data is present (use | for columns)
- Numbered citations linking to reliable sources
- Clean, consistent formatting throughout

For tables, use markdown format like this:
| Header 1 | Header 2 |
|----------|----------|
| Data 1   | Data 2   |

Guidelines:
1. Search globally in multiple languages for comprehensive coverage
2. Include sources from academic papers, research institutions, and expert analysis
3. Use numbered citations [1], [2], etc. throughout the content
4. Consider multiple perspectives and competing theories
5. Prioritize peer-reviewed research and primary sources
6. Maintain academic rigor while being accessible`

// ArticleSchema is the JSON schema of an article reply: a title, sections
// with optional subsections, an optional markdown summary table, and
// numbered citations.
var ArticleSchema = json.RawMessage(`{
  "type": "object",
  "required": ["title", "sections", "citations"],
  "properties": {
    "title": {"type": "string"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["heading", "content"],
        "properties": {
          "heading": {"type": "string"},
          "content": {"type": "string"},
          "subsections": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["heading", "content"],
              "properties": {
                "heading": {"type": "string"},
                "content": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "summary_table": {
      "type": "string",
      "description": "A markdown-formatted table with summary data"
    },
    "citations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["number", "url"],
        "properties": {
          "number": {"type": "number"},
          "url": {"type": "string"}
        }
      }
    }
  }
}`)

// BuildStructuredRequest wraps query into the two-message conversation of a
// structured query and returns a copy of s constrained to ArticleSchema.
// s itself is left untouched, including any response format it carries.
func BuildStructuredRequest(query string, s Settings) ([]Message, Settings) {
	messages := []Message{
		NewSystemMessage(ArticlePrompt),
		NewUserMessage(query),
	}
	structured := s.Clone()
	structured.ResponseFormat = JSONSchemaFormat{Schema: ArticleSchema}
	return messages, structured
}

// StructuredCompletion asks query with an article-shaped response constraint.
// Errors from ChatCompletion are returned unchanged.
func (c *Client) StructuredCompletion(ctx context.Context, query, apiKey string, s Settings) (*CompletionResult, error) {
	messages, structured := BuildStructuredRequest(query, s)
	return c.ChatCompletion(ctx, messages, apiKey, structured)
}
