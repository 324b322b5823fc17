// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves sonarchat's configuration.
//
// TOML is the primary format; JSON and YAML files are accepted by
// extension. Missing fields take their defaults and environment variables
// override whatever the file says.
//
// # Configuration Precedence
//
//   - Environment variables (PPLX_API_KEY, SONARCHAT_*)
//   - ~/.sonarchat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings := cfg.API.Settings
//
// Watch reloads the file on change so a running TUI can pick up edits.
package config
