// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/session"
)

// ErrUnknownCommand is returned for a slash command nobody registered.
var ErrUnknownCommand = errors.New("unknown command")

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is a slash command available in the TUI and the plain REPL.
type Command struct {
	// Name is the primary name, e.g. "/help".
	Name string

	// Aliases are alternative names, e.g. "/h".
	Aliases []string

	// Usage shows the argument syntax, e.g. "/model <name>".
	Usage string

	// Description is shown by /help.
	Description string

	// Category groups commands in /help.
	Category string

	Handler func(ctx *Context, args Args) Result
}

// =============================================================================
// RESULT
// =============================================================================

// Action is what the front end must do after a command ran. Actions cover
// the parts that differ between the TUI and the REPL.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionToggleTheme
	ActionFillInput // put Result.Input into the input box
	ActionOpenSettings
	ActionKeyEntry // prompt for an API key without echo
)

// Result is the outcome of a command.
type Result struct {
	Action Action

	// Output is shown to the user as a notice. Empty means nothing to show.
	Output string

	// Input is the text for ActionFillInput.
	Input string

	// Err is set when the command was rejected. Session state is unchanged.
	Err error
}

func output(format string, args ...any) Result {
	return Result{Output: fmt.Sprintf(format, args...)}
}

func failure(err error) Result {
	return Result{Err: err}
}

// =============================================================================
// CONTEXT
// =============================================================================

// Context is what handlers operate on.
type Context struct {
	Session  *session.Session
	Renderer *render.Renderer
	Logger   *zap.Logger

	// Theme is "dark" or "light" and styles HTML exports.
	Theme string

	registry *Registry
}

// NewContext creates a handler context. A nil renderer or logger gets a default.
func NewContext(sess *session.Session, r *render.Renderer, logger *zap.Logger) *Context {
	if r == nil {
		r = render.New(render.WithLogger(logger))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{Session: sess, Renderer: r, Logger: logger, Theme: "dark"}
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds the registered commands in registration order.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Command)}
	r.registerBuiltins()
	return r
}

// Register adds cmd under its name and aliases.
func (r *Registry) Register(cmd *Command) {
	r.commands = append(r.commands, cmd)
	r.byName[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.byName[alias] = cmd
	}
}

// Get returns the command with the given name or alias, or nil.
func (r *Registry) Get(name string) *Command {
	return r.byName[name]
}

// All returns the commands in registration order.
func (r *Registry) All() []*Command {
	return slices.Clone(r.commands)
}

// Names returns the primary command names, used for input hints.
func (r *Registry) Names() []string {
	names := make([]string, len(r.commands))
	for i, c := range r.commands {
		names[i] = c.Name
	}
	return names
}

// Execute parses input and runs the matching command.
func (r *Registry) Execute(ctx *Context, input string) Result {
	parsed := Parse(input)
	if !parsed.IsCommand {
		return failure(fmt.Errorf("not a command: %q", input))
	}
	cmd := r.Get(parsed.Name)
	if cmd == nil {
		return failure(fmt.Errorf("%w %s (try /help)", ErrUnknownCommand, parsed.Name))
	}
	ctx.registry = r

	res := cmd.Handler(ctx, parsed.Args)
	if res.Err != nil {
		ctx.Logger.Debug("command rejected", zap.String("command", cmd.Name), zap.Error(res.Err))
	}
	return res
}
