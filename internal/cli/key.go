// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/sonarchat/internal/perplexity"
)

// =============================================================================
// KEY COMMAND
// =============================================================================

// Key sources reported by key show.
const (
	KeySourceEnv    = "environment"
	KeySourceConfig = "config"
	KeySourceStore  = "store"
	KeySourceNone   = "none"
)

// HandleKey handles key set, show and clear.
func HandleKey(env *Env, args Args) error {
	switch args.Subcommand {
	case "set":
		return handleKeySet(env, args)
	case "show", "status":
		return handleKeyShow(env, args)
	case "clear", "delete", "rm":
		return handleKeyClear(env, args)
	default:
		return NewUsageError(fmt.Sprintf("unknown key subcommand %q", args.Subcommand), "sonarchat key set")
	}
}

func handleKeySet(env *Env, args Args) error {
	key := NewArgParser(args.Raw).Positional(1)
	if key == "" {
		var err error
		if key, err = readKey(env); err != nil {
			return NewCommandError("key", "set", err)
		}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return NewUsageError("no key entered", "sonarchat key set")
	}

	if err := env.Session.SetAPIKey(key); err != nil {
		return NewCommandError("key", "set", err)
	}
	if args.JSON {
		return NewJSONResponse("key set", KeyData{Set: true, Fingerprint: perplexity.KeyFingerprint(key), Source: KeySourceStore}).Write(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s API key saved (fingerprint %s)\n", SuccessStyle.Render("OK"), perplexity.KeyFingerprint(key))
	if src := keySource(env); src == KeySourceEnv || src == KeySourceConfig {
		fmt.Fprintln(env.Stderr, WarningStyle.Render("Note: the key from the "+src+" still takes precedence."))
	}
	return nil
}

// readKey reads a key without echo from a terminal, or one line from stdin.
func readKey(env *Env) (string, error) {
	if env.Interactive {
		fmt.Fprint(env.Stderr, "Perplexity API key: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(env.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(env.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no key on stdin")
	}
	return line, nil
}

func handleKeyShow(env *Env, args Args) error {
	key := env.Session.APIKey()
	data := KeyData{
		Set:         key != "",
		Fingerprint: perplexity.KeyFingerprint(key),
		Source:      keySource(env),
	}
	if args.JSON {
		return NewJSONResponse("key show", data).Write(env.Stdout)
	}
	fmt.Fprintln(env.Stdout, labelValue("API key", perplexity.MaskKey(key)))
	fmt.Fprintln(env.Stdout, labelValue("Source", data.Source))
	return nil
}

func handleKeyClear(env *Env, args Args) error {
	if err := env.Session.SetAPIKey(""); err != nil {
		return NewCommandError("key", "clear", err)
	}
	if args.JSON {
		return NewJSONResponse("key clear", KeyData{Fingerprint: perplexity.KeyFingerprint(""), Source: KeySourceNone}).Write(env.Stdout)
	}
	fmt.Fprintf(env.Stdout, "%s stored API key removed\n", SuccessStyle.Render("OK"))
	return nil
}

// keySource reports where the effective key comes from. Environment and
// config keys are applied over the stored one at startup.
func keySource(env *Env) string {
	switch {
	case os.Getenv("PPLX_API_KEY") != "":
		return KeySourceEnv
	case env.Config != nil && env.Config.API.APIKey != "":
		return KeySourceConfig
	}
	if env.Prefs != nil {
		if k, err := env.Prefs.APIKey(); err == nil && k != "" {
			return KeySourceStore
		}
	}
	return KeySourceNone
}
