// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the small key-value store that keeps the API key
// and theme preference between runs.
//
// Two backends implement Store: FileStore keeps a JSON object in one file
// written atomically with mode 0600, and SQLiteStore keeps a kv table in a
// SQLite database (pure Go driver). Values are stored in plain text.
//
// Preferences wraps a Store with the fixed keys the application uses. There
// is no package-level instance; callers open a store and pass it along.
//
// # Usage
//
//	store, err := storage.Open(storage.BackendFile, path)
//	prefs := storage.NewPreferences(store)
//	key, err := prefs.APIKey()
package storage
