// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Keys used by Preferences.
const (
	KeyAPIKey = "perplexity_api_key"
	KeyTheme  = "theme"
)

// Theme is the persisted color scheme preference.
type Theme string

const (
	// ThemeAuto means no preference was saved; follow the terminal background.
	ThemeAuto  Theme = ""
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme parses "dark", "light" or "auto".
func ParseTheme(s string) (Theme, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "auto", "system":
		return ThemeAuto, nil
	case "dark", "light":
		return Theme(v), nil
	default:
		return ThemeAuto, fmt.Errorf("invalid theme %q (dark, light or auto)", s)
	}
}

// Toggle returns the opposite scheme. Auto resolves against isDark first.
func (t Theme) Toggle(isDark bool) Theme {
	if t == ThemeDark || (t == ThemeAuto && isDark) {
		return ThemeLight
	}
	return ThemeDark
}

// Preferences reads and writes the application's persisted values.
type Preferences struct {
	store Store
}

// NewPreferences wraps store.
func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

// Store returns the underlying store.
func (p *Preferences) Store() Store {
	return p.store
}

// APIKey loads the saved API key. A missing key is returned as "".
func (p *Preferences) APIKey() (string, error) {
	return p.get(KeyAPIKey)
}

// SaveAPIKey persists key. An empty key removes the entry.
func (p *Preferences) SaveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return p.store.Delete(KeyAPIKey)
	}
	return p.store.Set(KeyAPIKey, key)
}

// Theme loads the saved theme preference. Unknown values read as ThemeAuto.
func (p *Preferences) Theme() (Theme, error) {
	v, err := p.get(KeyTheme)
	if err != nil {
		return ThemeAuto, err
	}
	t, err := ParseTheme(v)
	if err != nil {
		return ThemeAuto, nil
	}
	return t, nil
}

// SaveTheme persists the theme preference. ThemeAuto removes the entry.
func (p *Preferences) SaveTheme(t Theme) error {
	if t == ThemeAuto {
		return p.store.Delete(KeyTheme)
	}
	return p.store.Set(KeyTheme, string(t))
}

func (p *Preferences) get(key string) (string, error) {
	v, err := p.store.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
