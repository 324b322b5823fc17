// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package perplexity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// ResponseFormat constrains the shape of the model's reply. The only
// implementations are JSONSchemaFormat and RegexFormat, so a request carries
// at most one constraint.
type ResponseFormat interface {
	// Kind returns "json_schema" or "regex".
	Kind() string

	wire() *responseFormatWire
}

// JSONSchemaFormat requests a reply that validates against Schema.
type JSONSchemaFormat struct {
	Schema json.RawMessage
}

// Kind implements ResponseFormat.
func (JSONSchemaFormat) Kind() string { return "json_schema" }

func (f JSONSchemaFormat) wire() *responseFormatWire {
	return &responseFormatWire{
		Type:       f.Kind(),
		JSONSchema: &jsonSchemaWire{Schema: f.Schema},
	}
}

// RegexFormat requests a reply matching Pattern. The API serves it on the
// sonar model only.
type RegexFormat struct {
	Pattern string
}

// Kind implements ResponseFormat.
func (RegexFormat) Kind() string { return "regex" }

func (f RegexFormat) wire() *responseFormatWire {
	return &responseFormatWire{
		Type:  f.Kind(),
		Regex: &regexWire{Regex: f.Pattern},
	}
}

// responseFormatWire is the request body encoding of a ResponseFormat.
type responseFormatWire struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaWire `json:"json_schema,omitempty"`
	Regex      *regexWire      `json:"regex,omitempty"`
}

type jsonSchemaWire struct {
	Schema json.RawMessage `json:"schema"`
}

type regexWire struct {
	Regex string `json:"regex"`
}

// FormatKind returns the settings panel label for f: "none", "json" or "regex".
func FormatKind(f ResponseFormat) string {
	switch f.(type) {
	case JSONSchemaFormat:
		return "json"
	case RegexFormat:
		return "regex"
	default:
		return "none"
	}
}

// ParseStructuredOutput turns a settings panel edit into a ResponseFormat.
// kind is "none", "json" or "regex". A schema must be a JSON object and a
// pattern must compile; otherwise ErrInvalidSchema or ErrInvalidRegex is
// returned and the caller keeps its previous settings. A nil format with a
// nil error means the constraint was cleared.
func ParseStructuredOutput(kind, raw string) (ResponseFormat, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none":
		return nil, nil
	case "json", "json_schema", "schema":
		raw = strings.TrimSpace(raw)
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		if obj == nil {
			return nil, fmt.Errorf("%w: schema must be a JSON object", ErrInvalidSchema)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(raw)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		return JSONSchemaFormat{Schema: buf.Bytes()}, nil
	case "regex":
		if raw == "" {
			return nil, fmt.Errorf("%w: empty pattern", ErrInvalidRegex)
		}
		if _, err := regexp2.Compile(raw, regexp2.None); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRegex, err)
		}
		return RegexFormat{Pattern: raw}, nil
	default:
		return nil, fmt.Errorf("unknown structured output type %q (none, json or regex)", kind)
	}
}
