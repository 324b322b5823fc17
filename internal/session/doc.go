// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state of one chat: the conversation, the
// loading flag, related questions, request settings and the API key.
//
// A Session allows one outstanding request at a time. Callers either use
// Submit, which runs the whole exchange, or split it into Begin, Execute
// and Complete when the request runs on another goroutine (the TUI does
// this so that the spinner keeps animating).
//
// # Usage
//
//	s := session.New(session.Options{
//	    Completer:   client,
//	    Preferences: prefs,
//	    Settings:    cfg.API.Settings,
//	})
//	if err := s.LoadAPIKey(); err != nil {
//	    return err
//	}
//	reply, err := s.Submit(ctx, "What is new in Go 1.24?")
package session
