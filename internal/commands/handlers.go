// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/export"
	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/util"
)

// ErrBusy is returned by commands that cannot run while a reply is pending.
var ErrBusy = errors.New("wait for the current reply or press esc to cancel")

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name: "/help", Aliases: []string{"/h", "/?"},
		Usage: "/help", Description: "Show available commands", Category: "General",
		Handler: handleHelp,
	})
	r.Register(&Command{
		Name: "/clear", Aliases: []string{"/new"},
		Usage: "/clear", Description: "Start a new conversation", Category: "General",
		Handler: handleClear,
	})
	r.Register(&Command{
		Name: "/model", Aliases: []string{"/m"},
		Usage: "/model [name]", Description: "Show or switch the model", Category: "Settings",
		Handler: handleModel,
	})
	r.Register(&Command{
		Name:  "/set",
		Usage: "/set <field> <value>", Description: "Change a request setting, e.g. /set temperature 0.3", Category: "Settings",
		Handler: handleSet,
	})
	r.Register(&Command{
		Name:  "/settings",
		Usage: "/settings", Description: "Open the settings panel", Category: "Settings",
		Handler: func(*Context, Args) Result { return Result{Action: ActionOpenSettings} },
	})
	r.Register(&Command{
		Name:  "/domains",
		Usage: "/domains <a.com,-b.com|none>", Description: "Limit search to domains; a leading - excludes", Category: "Search",
		Handler: handleDomains,
	})
	r.Register(&Command{
		Name:  "/recency",
		Usage: "/recency <hour|day|week|month|none>", Description: "Limit search results by age", Category: "Search",
		Handler: handleRecency,
	})
	r.Register(&Command{
		Name:  "/schema",
		Usage: "/schema <json>", Description: "Constrain output with a JSON schema", Category: "Output",
		Handler: structuredOutput("json"),
	})
	r.Register(&Command{
		Name:  "/regex",
		Usage: "/regex <pattern>", Description: "Constrain output with a regex (sonar only)", Category: "Output",
		Handler: structuredOutput("regex"),
	})
	r.Register(&Command{
		Name:  "/format",
		Usage: "/format [none]", Description: "Show or clear the output constraint", Category: "Output",
		Handler: handleFormat,
	})
	r.Register(&Command{
		Name:  "/related",
		Usage: "/related [n]", Description: "List related questions or ask question n", Category: "General",
		Handler: handleRelated,
	})
	r.Register(&Command{
		Name:  "/theme",
		Usage: "/theme", Description: "Toggle dark and light theme", Category: "General",
		Handler: func(*Context, Args) Result { return Result{Action: ActionToggleTheme} },
	})
	r.Register(&Command{
		Name: "/export", Aliases: []string{"/e"},
		Usage: "/export [file.md|.json|.html]", Description: "Export the conversation", Category: "General",
		Handler: handleExport,
	})
	r.Register(&Command{
		Name:  "/key",
		Usage: "/key [key|clear]", Description: "Set or clear the Perplexity API key", Category: "General",
		Handler: handleKey,
	})
	r.Register(&Command{
		Name: "/quit", Aliases: []string{"/q", "/exit"},
		Usage: "/quit", Description: "Exit sonarchat", Category: "General",
		Handler: func(*Context, Args) Result { return Result{Action: ActionQuit} },
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelp(ctx *Context, _ Args) Result {
	var cmds []*Command
	if ctx.registry != nil {
		cmds = ctx.registry.All()
	}
	width := 0
	for _, c := range cmds {
		width = max(width, util.StringWidth(c.Usage))
	}

	var b strings.Builder
	var category string
	for _, c := range cmds {
		if c.Category != category {
			if category != "" {
				b.WriteString("\n")
			}
			category = c.Category
			b.WriteString(category + ":\n")
		}
		b.WriteString("  " + util.PadRight(c.Usage, width) + "  " + c.Description + "\n")
	}
	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

func handleClear(ctx *Context, _ Args) Result {
	if ctx.Session.Loading() {
		return failure(ErrBusy)
	}
	ctx.Session.Clear()
	return Result{}
}

func handleModel(ctx *Context, args Args) Result {
	current := ctx.Session.Settings().Model
	if args.Len() == 0 {
		var b strings.Builder
		for _, info := range model.ListModels() {
			marker := "  "
			if info.ID == current {
				marker = "* "
			}
			fmt.Fprintf(&b, "%s%-20s %s\n", marker, info.ID, info.Summary())
		}
		return Result{Output: strings.TrimRight(b.String(), "\n")}
	}

	m, err := perplexity.ParseModel(args.Arg(0))
	if err != nil {
		return failure(err)
	}
	if err := ctx.Session.UpdateSettings(func(s *perplexity.Settings) { s.Model = m }); err != nil {
		return failure(err)
	}
	return output("Model set to %s.", model.GetModelInfo(m).Name)
}

// SettingKeys lists the fields /set accepts.
func SettingKeys() []string {
	excluded := []string{"api_key", "base_url", "request_timeout_secs"}
	var keys []string
	for _, k := range config.Keys() {
		name, ok := strings.CutPrefix(k, "api.")
		if ok && !slices.Contains(excluded, name) {
			keys = append(keys, name)
		}
	}
	return keys
}

func handleSet(ctx *Context, args Args) Result {
	keys := SettingKeys()
	cfg := config.Default()
	cfg.API.Settings = ctx.Session.Settings()

	if args.Len() == 0 {
		var b strings.Builder
		for _, k := range keys {
			v, _ := cfg.Get("api." + k)
			fmt.Fprintf(&b, "%-26s %v\n", k, v)
		}
		return Result{Output: strings.TrimRight(b.String(), "\n")}
	}

	key := strings.ReplaceAll(strings.ToLower(args.Arg(0)), "-", "_")
	if !slices.Contains(keys, key) {
		return failure(fmt.Errorf("unknown setting %q (one of %s)", args.Arg(0), strings.Join(keys, ", ")))
	}
	value := strings.TrimSpace(strings.TrimPrefix(args.Raw, args.Arg(0)))
	if err := cfg.Set("api."+key, value); err != nil {
		return failure(err)
	}
	if err := ctx.Session.SetSettings(cfg.API.Settings); err != nil {
		return failure(err)
	}
	v, _ := cfg.Get("api." + key)
	return output("%s = %v", key, v)
}

func handleDomains(ctx *Context, args Args) Result {
	raw := args.Raw
	if raw == "" {
		domains := ctx.Session.Settings().SearchDomainFilter
		if len(domains) == 0 {
			return output("No domain filter.")
		}
		return output("Domains: %s", strings.Join(domains, ", "))
	}
	if strings.EqualFold(raw, "none") || strings.EqualFold(raw, "clear") {
		raw = ""
	}
	domains, err := perplexity.ParseDomainFilter(raw)
	if err != nil {
		return failure(err)
	}
	if err := ctx.Session.UpdateSettings(func(s *perplexity.Settings) { s.SearchDomainFilter = domains }); err != nil {
		return failure(err)
	}
	if len(domains) == 0 {
		return output("Domain filter cleared.")
	}
	return output("Domains: %s", strings.Join(domains, ", "))
}

func handleRecency(ctx *Context, args Args) Result {
	if args.Len() == 0 {
		r := ctx.Session.Settings().SearchRecencyFilter
		if r == perplexity.RecencyNone {
			return output("No recency filter.")
		}
		return output("Recency: %s", r)
	}
	r, err := perplexity.ParseRecency(args.Arg(0))
	if err != nil {
		return failure(err)
	}
	if err := ctx.Session.UpdateSettings(func(s *perplexity.Settings) { s.SearchRecencyFilter = r }); err != nil {
		return failure(err)
	}
	if r == perplexity.RecencyNone {
		return output("Recency filter cleared.")
	}
	return output("Recency: %s", r)
}

func structuredOutput(kind string) func(*Context, Args) Result {
	return func(ctx *Context, args Args) Result {
		if args.Raw == "" {
			return failure(fmt.Errorf("usage: /%s <%s>", map[string]string{"json": "schema", "regex": "regex"}[kind],
				map[string]string{"json": "json", "regex": "pattern"}[kind]))
		}
		if err := ctx.Session.ApplyStructuredOutput(kind, args.Raw); err != nil {
			return failure(err)
		}
		return output("Structured output: %s.", kind)
	}
}

func handleFormat(ctx *Context, args Args) Result {
	if args.Len() == 0 {
		return output("Structured output: %s.", perplexity.FormatKind(ctx.Session.Settings().ResponseFormat))
	}
	if !strings.EqualFold(args.Arg(0), "none") {
		return failure(fmt.Errorf("use /schema or /regex to set a format, /format none to clear it"))
	}
	if err := ctx.Session.ApplyStructuredOutput("none", ""); err != nil {
		return failure(err)
	}
	return output("Structured output cleared.")
}

func handleRelated(ctx *Context, args Args) Result {
	questions := ctx.Session.RelatedQuestions()
	if len(questions) == 0 {
		return output("No related questions.")
	}
	if args.Len() == 0 {
		var b strings.Builder
		for i, q := range questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		return Result{Output: strings.TrimRight(b.String(), "\n")}
	}

	n, err := strconv.Atoi(args.Arg(0))
	if err != nil || n < 1 || n > len(questions) {
		return failure(fmt.Errorf("pick a question between 1 and %d", len(questions)))
	}
	q, _ := ctx.Session.UseRelatedQuestion(n - 1)
	return Result{Action: ActionFillInput, Input: q}
}

func handleExport(ctx *Context, args Args) Result {
	conv := ctx.Session.Conversation()
	path := args.Raw
	if path == "" {
		path = export.DefaultFilename(conv, ".md")
	}
	path = filepath.Clean(path)

	opts := export.DefaultOptions()
	opts.Model = string(ctx.Session.Settings().Model)
	opts.Theme = ctx.Theme

	exporter, err := export.ForPath(path, ctx.Renderer, opts)
	if err != nil {
		return failure(err)
	}
	if err := export.WriteFile(path, conv, exporter); err != nil {
		return failure(fmt.Errorf("export failed: %w", err))
	}
	return output("Exported %d messages to %s", conv.Len(), path)
}

func handleKey(ctx *Context, args Args) Result {
	switch {
	case args.Len() == 0:
		return Result{Action: ActionKeyEntry}
	case strings.EqualFold(args.Arg(0), "clear"):
		if err := ctx.Session.SetAPIKey(""); err != nil {
			return failure(err)
		}
		return output("API key cleared.")
	default:
		key := args.Arg(0)
		if err := ctx.Session.SetAPIKey(key); err != nil {
			return failure(err)
		}
		return output("API key saved (fingerprint %s).", perplexity.KeyFingerprint(key))
	}
}
