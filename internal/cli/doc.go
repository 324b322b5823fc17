// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI commands of sonarchat.
//
// # Commands
//
//   - ask: one structured query, printed as rendered markdown
//   - chat: line-oriented REPL with history, sharing the slash commands
//     of the TUI
//   - key: set, show or clear the stored API key
//   - config: show, get or set configuration values
//   - version, help
//
// Parse turns the command line into a Command and Args. main builds an Env
// from the loaded configuration and hands both to Run. Errors map to exit
// codes through GetExitCode.
//
// Output is colored only on a terminal and never when NO_COLOR is set.
// Commands that print data accept --json.
package cli
