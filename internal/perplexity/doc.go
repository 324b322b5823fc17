// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package perplexity provides the client for the Perplexity chat-completions API.
//
// The client performs exactly one non-streaming POST per call and returns the
// decoded completion envelope. Failures are reported as *RequestError; there is
// no retry and no caching.
//
// # Key Types
//
//   - Client: HTTP client for the /chat/completions endpoint
//   - Settings: sampling and search options sent with every request
//   - ResponseFormat: JSON schema or regex output constraint (sealed)
//   - CompletionResult: the decoded response envelope
//
// # Usage
//
// Ask a question and request an article-shaped JSON reply:
//
//	client := perplexity.NewClient().WithLogger(logger)
//	res, err := client.StructuredCompletion(ctx, "What is RISC-V?", apiKey, perplexity.DefaultSettings())
//	if err != nil {
//	    return err
//	}
//	content, err := res.Content()
//
// # Security
//
// API keys are sent only in the Authorization header and never logged; log
// lines carry a short SHA-256 fingerprint instead.
package perplexity
