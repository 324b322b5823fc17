// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/perplexity"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig handles the config subcommands. It works on the file at
// env.ConfigPath directly, so it also serves to repair a file that no
// longer validates. Only the output fields of env are needed.
func HandleConfig(env *Env, args Args) error {
	w, path := env.Stdout, env.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return NewCommandError("config", args.Subcommand, err)
		}
	}
	p := NewArgParser(args.Raw, "yaml", "json", "toml")

	switch args.Subcommand {
	case "show", "list":
		return configShow(w, env.Stderr, path, args, p)
	case "get":
		return configGet(w, path, p.Positional(1))
	case "set":
		return configSet(w, path, p.Positional(1), strings.Join(p.PositionalFrom(2), " "))
	case "path":
		return configPath(w, path, args)
	case "keys":
		for _, k := range config.Keys() {
			fmt.Fprintln(w, k)
		}
		return nil
	default:
		return NewUsageError(fmt.Sprintf("unknown config subcommand %q", args.Subcommand), "sonarchat config set api.model sonar-pro")
	}
}

// readConfig returns the file contents over the defaults, or the defaults
// when the file does not exist.
func readConfig(path string) (*config.Config, error) {
	cfg, err := config.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func configShow(w, errw io.Writer, path string, args Args, p *ArgParser) error {
	cfg, err := readConfig(path)
	if err != nil {
		return NewCommandError("config", "show", err)
	}
	cfg.ApplyEnvOverrides()

	var text string
	switch {
	case args.JSON || p.BoolFlag("json"):
		text = cfg.String() + "\n"
	case p.BoolFlag("yaml"):
		text, err = cfg.MarshalYAMLText()
	default:
		text, err = cfg.MarshalTOMLText()
	}
	if err != nil {
		return NewCommandError("config", "show", err)
	}
	fmt.Fprint(w, text)

	if verr := cfg.Validate(); verr != nil {
		fmt.Fprintln(errw, WarningStyle.Render("Warning: "+verr.Error()))
		if cfg.API.Model == perplexity.LegacyDefaultModel {
			fmt.Fprintln(errw, DimStyle.Render("Fix it with: sonarchat config set api.model sonar"))
		}
	}
	return nil
}

func configGet(w io.Writer, path, key string) error {
	if key == "" {
		return NewUsageError("config get needs a key", "sonarchat config get api.temperature")
	}
	cfg, err := readConfig(path)
	if err != nil {
		return NewCommandError("config", "get", err)
	}
	cfg.ApplyEnvOverrides()

	v, err := cfg.Get(key)
	if err != nil {
		return NewUsageError(err.Error(), "sonarchat config keys")
	}
	if key == "api.api_key" {
		v = perplexity.MaskKey(cfg.API.APIKey)
	}
	fmt.Fprintln(w, v)
	return nil
}

// configSet changes one key and saves the file. The result must validate.
func configSet(w io.Writer, path, key, value string) error {
	if key == "" {
		return NewUsageError("config set needs a key and a value", "sonarchat config set api.model sonar-pro")
	}
	cfg, err := readConfig(path)
	if err != nil {
		return NewCommandError("config", "set", err)
	}
	if err := cfg.Set(key, value); err != nil {
		return NewUsageError(err.Error(), "sonarchat config keys")
	}
	if err := cfg.Validate(); err != nil {
		return NewCommandError("config", "set", err)
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "set", err)
	}

	shown := value
	if key == "api.api_key" {
		shown = perplexity.MaskKey(value)
	}
	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("OK"), key, shown)
	return nil
}

func configPath(w io.Writer, path string, args Args) error {
	_, err := os.Stat(path)
	if args.JSON {
		return NewJSONResponse("config path", ConfigPathData{Path: path, Exists: err == nil}).Write(w)
	}
	fmt.Fprintln(w, path)
	return nil
}
