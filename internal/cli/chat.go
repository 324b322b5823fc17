// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/commands"
	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/session"
	"github.com/jeranaias/sonarchat/internal/storage"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader is the input side of the REPL.
type LineReader interface {
	Prompt(prompt string) (string, error)
	PromptWithSuggestion(prompt, text string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

// ChatCLI is a LineReader with line editing and a persistent history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the history file.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return c
}

// Prompt reads a line and records it in the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	c.remember(input)
	return input, nil
}

// PromptWithSuggestion reads a line prefilled with text.
func (c *ChatCLI) PromptWithSuggestion(prompt, text string) (string, error) {
	input, err := c.line.PromptWithSuggestion(prompt, text, -1)
	if err != nil {
		return "", err
	}
	c.remember(input)
	return input, nil
}

// PasswordPrompt reads a line without echo. It is never recorded.
func (c *ChatCLI) PasswordPrompt(prompt string) (string, error) {
	return c.line.PasswordPrompt(prompt)
}

func (c *ChatCLI) remember(input string) {
	// Slash commands can carry an API key.
	if s := strings.TrimSpace(input); s != "" && !strings.HasPrefix(s, "/key") {
		c.line.AppendHistory(input)
	}
}

// Close writes the history with mode 0600 and restores the terminal.
func (c *ChatCLI) Close() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// REPL is the line-oriented chat loop. It shares the slash commands with
// the TUI.
type REPL struct {
	env      *Env
	in       LineReader
	registry *commands.Registry
	cmdCtx   *commands.Context

	// pending prefills the next prompt, set by /related n.
	pending string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewREPL creates a REPL reading from in.
func NewREPL(env *Env, in LineReader) *REPL {
	return &REPL{
		env:      env,
		in:       in,
		registry: commands.NewRegistry(),
		cmdCtx:   commands.NewContext(env.Session, env.Renderer, env.Logger),
	}
}

// HandleChat runs the REPL on the terminal until /quit, EOF or Ctrl+C at
// the prompt. Ctrl+C during a request cancels only the request.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	if args.Model != "" {
		if err := applyModel(env.Session, args.Model); err != nil {
			return err
		}
	}

	historyFile := filepath.Join(os.TempDir(), "sonarchat_history")
	if dir, err := config.ConfigDir(); err == nil {
		historyFile = filepath.Join(dir, "chat_history")
	}
	in := NewChatCLI(historyFile)
	defer in.Close()

	r := NewREPL(env, in)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if r.Abort() {
				fmt.Fprintln(env.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	if !args.Quiet {
		r.printWelcome()
	}
	return r.Run(ctx)
}

// Run reads and handles lines until the input ends or /quit.
func (r *REPL) Run(ctx context.Context) error {
	out := r.env.Stdout
	for {
		input, err := r.read()
		if err != nil {
			// io.EOF and liner.ErrPromptAborted both end the chat.
			fmt.Fprintln(out)
			r.printExitSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case commands.IsCommand(input):
			if quit := r.runCommand(input); quit {
				r.printExitSummary()
				return nil
			}
		case strings.EqualFold(input, "exit"), strings.EqualFold(input, "quit"):
			r.printExitSummary()
			return nil
		default:
			r.ask(ctx, input)
		}
	}
}

func (r *REPL) read() (string, error) {
	prompt := PromptStyle.Render("sonar> ")
	if r.pending != "" {
		text := r.pending
		r.pending = ""
		return r.in.PromptWithSuggestion(prompt, text)
	}
	return r.in.Prompt(prompt)
}

// Abort cancels the outstanding request. It reports whether there was one.
func (r *REPL) Abort() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

func (r *REPL) setCancel(cancel context.CancelFunc) {
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

// ask sends one query and prints the reply or the apology.
func (r *REPL) ask(ctx context.Context, input string) {
	req, err := r.env.Session.Begin(input)
	if err != nil {
		r.printError(err)
		if errors.Is(err, session.ErrNoAPIKey) {
			fmt.Fprintln(r.env.Stderr, DimStyle.Render("Set one with /key."))
		}
		return
	}

	reqCtx, cancel := context.WithCancel(ctx)
	r.setCancel(cancel)
	if r.env.Styled {
		fmt.Fprintln(r.env.Stderr, DimStyle.Render("Searching..."))
	}
	res, err := r.env.Session.Execute(reqCtx, req)
	r.Abort()

	msg := r.env.Session.Complete(res, err)
	if msg.Content == model.ErrorReply {
		fmt.Fprintln(r.env.Stdout, ErrorStyle.Render(msg.Content))
		return
	}
	printReply(r.env, msg)
	printRelated(r.env.Stdout, r.env.Session.RelatedQuestions())
}

// runCommand executes a slash command. It reports whether to quit.
func (r *REPL) runCommand(input string) bool {
	r.cmdCtx.Theme = r.themeName()
	res := r.registry.Execute(r.cmdCtx, input)

	if res.Err != nil {
		r.printError(res.Err)
	} else if res.Output != "" {
		fmt.Fprintln(r.env.Stdout, res.Output)
	}

	switch res.Action {
	case commands.ActionQuit:
		return true
	case commands.ActionToggleTheme:
		r.toggleTheme()
	case commands.ActionFillInput:
		r.pending = res.Input
	case commands.ActionOpenSettings:
		fmt.Fprintln(r.env.Stdout, r.settingsTable())
		fmt.Fprintln(r.env.Stdout, DimStyle.Render("Change a value with /set <field> <value>."))
	case commands.ActionKeyEntry:
		r.enterKey()
	}
	return false
}

func (r *REPL) enterKey() {
	key, err := r.in.PasswordPrompt("Perplexity API key: ")
	if err != nil || strings.TrimSpace(key) == "" {
		fmt.Fprintln(r.env.Stdout, DimStyle.Render("API key unchanged."))
		return
	}
	if err := r.env.Session.SetAPIKey(key); err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintln(r.env.Stdout, SuccessStyle.Render("API key saved."))
}

// themeName resolves the theme preference to dark or light.
func (r *REPL) themeName() string {
	switch r.env.Theme {
	case storage.ThemeDark, storage.ThemeLight:
		return string(r.env.Theme)
	}
	if HasDarkBackground() {
		return string(storage.ThemeDark)
	}
	return string(storage.ThemeLight)
}

func (r *REPL) toggleTheme() {
	next := r.env.Theme.Toggle(r.themeName() == string(storage.ThemeDark))
	r.env.Theme = next
	if r.env.Prefs != nil {
		if err := r.env.Prefs.SaveTheme(next); err != nil {
			r.env.Logger.Warn("failed to save theme", zap.Error(err))
		}
	}
	fmt.Fprintf(r.env.Stdout, "theme: %s\n", next)
}

// settingsTable renders the request settings as a table.
func (r *REPL) settingsTable() string {
	cfg := config.Default()
	cfg.API.Settings = r.env.Session.Settings()

	var rows [][]string
	for _, k := range commands.SettingKeys() {
		v, _ := cfg.Get("api." + k)
		rows = append(rows, []string{k, fmt.Sprint(v)})
	}
	if f := cfg.API.ResponseFormat; f != nil {
		rows = append(rows, []string{"response_format", f.Kind()})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Overlay)).
		Headers("Setting", "Value").
		Rows(rows...).
		String()
}

func (r *REPL) printError(err error) {
	fmt.Fprintf(r.env.Stderr, "%s %v\n", ErrorStyle.Render("error:"), err)
}

func (r *REPL) printWelcome() {
	settings := r.env.Session.Settings()
	out := r.env.Stdout
	fmt.Fprintln(out, TitleStyle.Render("sonarchat "+Version))
	fmt.Fprintln(out, labelValue("Model", model.GetModelInfo(settings.Model).Name))
	key := "not set (use /key)"
	if r.env.Session.HasAPIKey() {
		key = "set"
	}
	fmt.Fprintln(out, labelValue("API key", key))
	fmt.Fprintln(out, DimStyle.Render("Type /help for commands, /quit or Ctrl+D to leave."))
	fmt.Fprintln(out)
}

func (r *REPL) printExitSummary() {
	n := r.env.Session.Conversation().Len()
	if n == 0 {
		return
	}
	fmt.Fprintln(r.env.Stdout, DimStyle.Render(fmt.Sprintf("%d messages this session.", n)))
}
