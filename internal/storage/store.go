// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases the store's resources.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// DefaultDir returns ~/.sonarchat.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sonarchat"), nil
}

// DefaultPath returns the default store location for backend.
func DefaultPath(backend Backend) (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	if backend == BackendSQLite {
		return filepath.Join(dir, "store.db"), nil
	}
	return filepath.Join(dir, "store.json"), nil
}

// Open opens the store for backend at path. An empty path selects DefaultPath.
func Open(backend Backend, path string) (Store, error) {
	backend = Backend(strings.ToLower(strings.TrimSpace(string(backend))))
	if backend == "" {
		backend = BackendFile
	}
	if path == "" {
		p, err := DefaultPath(backend)
		if err != nil {
			return nil, err
		}
		path = p
	}
	switch backend {
	case BackendFile:
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (file or sqlite)", backend)
	}
}
