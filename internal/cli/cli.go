// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/session"
	"github.com/jeranaias/sonarchat/internal/storage"
)

// Version information, overridden at build time with -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdKey
	CmdConfig
	CmdVersion
	CmdHelp
)

func (c Command) String() string {
	switch c {
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdKey:
		return "key"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "tui"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	Debug      bool
	JSON       bool
	Model      string
	ConfigPath string

	// ask
	Query      string
	RawContent bool // print the reply content unrendered

	// key, config
	Subcommand string

	// Raw holds the arguments after the command name.
	Raw []string
}

const usageText = `sonarchat - Perplexity chat in the terminal

Usage:
  sonarchat                      Start the chat TUI (default)
  sonarchat ask "question"       Ask one question and print the answer
  sonarchat chat                 Line-oriented chat REPL
  sonarchat key [set|show|clear] Manage the stored API key
  sonarchat config [subcommand]  Show or edit the configuration
  sonarchat version              Show version information
  sonarchat help                 Show this help

Ask options:
  -m, --model <name>    Model for this question (sonar, sonar-pro, ...)
  --raw                 Print the reply content without rendering
  --json                Print the API response envelope as JSON

Config subcommands:
  show [--yaml|--json]  Print the effective configuration (key masked)
  get <key>             Print one value, e.g. api.temperature
  set <key> <value>     Change one value and save the file
  path                  Print the config file path
  keys                  List every settable key

Global options:
  --config <path>       Use a different config file
  --model <name>        Model to start with
  --json                JSON output where supported
  -q, --quiet           Less output
  -v, --verbose         Log at debug level
  --debug               Development logging
  -h, --help            Show this help
  --version             Show version

Environment:
  PPLX_API_KEY          API key (overrides config and stored key)
  SONARCHAT_MODEL       Default model
  SONARCHAT_BASE_URL    API base URL
  SONARCHAT_LOG_LEVEL   Log level
  NO_COLOR              Disable colored output

In the chat, type /help for slash commands.
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses the command line, without the program name.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, early := parseGlobalFlags(argv)
	if early != nil {
		return *early, args, nil
	}
	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	name := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch name {
	case "tui":
		return CmdTUI, args, nil
	case "ask", "a":
		if err := parseAskArgs(&args, args.Raw); err != nil {
			return CmdAsk, args, err
		}
		return CmdAsk, args, nil
	case "chat", "repl":
		return CmdChat, args, nil
	case "key":
		args.Subcommand = subcommandOr(args.Raw, "show")
		return CmdKey, args, nil
	case "config", "cfg":
		args.Subcommand = subcommandOr(args.Raw, "show")
		return CmdConfig, args, nil
	case "version":
		return CmdVersion, args, nil
	case "help":
		return CmdHelp, args, nil
	default:
		return CmdHelp, args, NewUsageError(
			fmt.Sprintf("unknown command %q", remaining[0]),
			`sonarchat ask "what is new in Go 1.24?"`)
	}
}

// parseGlobalFlags pulls global flags out of argv wherever they appear.
// A non-nil early command means help or version was requested.
func parseGlobalFlags(argv []string) ([]string, Args, *Command) {
	var remaining []string
	var args Args
	var early *Command

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "--":
			remaining = append(remaining, argv[i:]...)
			return remaining, args, early
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--debug":
			args.Debug = true
		case "--json":
			args.JSON = true
		case "-h", "--help":
			c := CmdHelp
			early = &c
		case "--version":
			c := CmdVersion
			early = &c
		case "--model", "--config":
			if i+1 < len(argv) {
				i++
				if arg == "--model" {
					args.Model = argv[i]
				} else {
					args.ConfigPath = argv[i]
				}
			}
		default:
			if v, ok := strings.CutPrefix(arg, "--model="); ok {
				args.Model = v
			} else if v, ok := strings.CutPrefix(arg, "--config="); ok {
				args.ConfigPath = v
			} else {
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, args, early
}

// parseAskArgs reads the ask flags and joins the rest into the query.
func parseAskArgs(args *Args, raw []string) error {
	p := NewArgParser(raw, "raw")
	if m := p.FlagOrDefault("m", p.Flag("model")); m != "" {
		args.Model = m
	}
	args.RawContent = p.BoolFlag("raw")
	args.Query = strings.TrimSpace(strings.Join(p.PositionalFrom(0), " "))
	if args.Query == "" {
		return NewUsageError("ask needs a question", `sonarchat ask "what is new in Go 1.24?"`)
	}
	return nil
}

func subcommandOr(raw []string, def string) string {
	if sub := NewArgParser(raw, "yaml", "json").Subcommand(); sub != "" {
		return strings.ToLower(sub)
	}
	return def
}

// =============================================================================
// DISPATCH
// =============================================================================

// Env is what the commands run against. main builds it from the loaded
// configuration.
type Env struct {
	Config     *config.Config
	ConfigPath string

	Session  *session.Session
	Renderer *render.Renderer
	Prefs    *storage.Preferences
	Theme    storage.Theme
	Logger   *zap.Logger

	// Interactive is true when stdin is a terminal.
	Interactive bool
	// Styled is true when stdout gets ANSI rendering.
	Styled bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes a non-TUI command.
func Run(ctx context.Context, cmd Command, args Args, env *Env) error {
	switch cmd {
	case CmdAsk:
		return HandleAsk(ctx, env, args)
	case CmdChat:
		return HandleChat(ctx, env, args)
	case CmdKey:
		return HandleKey(env, args)
	case CmdConfig:
		return HandleConfig(env, args)
	case CmdVersion:
		return HandleVersion(env.Stdout, args)
	case CmdHelp:
		PrintUsage(env.Stdout)
		return nil
	default:
		return fmt.Errorf("command %s has no CLI handler", cmd)
	}
}

// HandleVersion prints version information.
func HandleVersion(w io.Writer, args Args) error {
	data := VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if args.JSON {
		return NewJSONResponse("version", data).Write(w)
	}
	fmt.Fprintf(w, "sonarchat %s\n", data.Version)
	if !args.Quiet {
		fmt.Fprintf(w, "  commit:   %s\n", data.GitCommit)
		fmt.Fprintf(w, "  built:    %s\n", data.BuildDate)
		fmt.Fprintf(w, "  go:       %s %s\n", data.GoVersion, data.Platform)
	}
	return nil
}
