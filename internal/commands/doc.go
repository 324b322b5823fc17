// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands shared by the TUI and the
// plain REPL.
//
// Handlers change session state directly (settings, API key, conversation)
// and report anything front-end specific, such as toggling the theme or
// filling the input box, as an Action in the Result.
//
// # Key Types
//
//   - Registry: built-in commands in registration order
//   - Command: name, aliases, usage and handler
//   - Context: the session, renderer and logger handlers operate on
//   - Result: output text, error and follow-up Action
//
// # Usage
//
//	reg := commands.NewRegistry()
//	ctx := commands.NewContext(sess, renderer, logger)
//	res := reg.Execute(ctx, "/set temperature 0.3")
//	if res.Err != nil {
//	    // show res.Err; settings are unchanged
//	}
package commands
