// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/session"
	"github.com/jeranaias/sonarchat/internal/storage"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk sends one structured query and prints the answer.
//
// Output modes:
//
//	default   rendered markdown (ANSI through glamour on a terminal)
//	--raw     the reply content as received
//	--json    the response envelope wrapped in a JSONResponse
func HandleAsk(ctx context.Context, env *Env, args Args) error {
	if args.Model != "" {
		if err := applyModel(env.Session, args.Model); err != nil {
			return err
		}
	}
	if !env.Session.HasAPIKey() {
		return NewCommandError("ask", "", fmt.Errorf("%w; run 'sonarchat key set' or set PPLX_API_KEY", session.ErrNoAPIKey))
	}

	req, err := env.Session.Begin(args.Query)
	if err != nil {
		return NewCommandError("ask", "", err)
	}
	if !args.Quiet && !args.JSON && env.Styled {
		fmt.Fprintln(env.Stderr, DimStyle.Render("Searching..."))
	}

	res, reqErr := env.Session.Execute(ctx, req)
	msg := env.Session.Complete(res, reqErr)
	if reqErr == nil {
		_, reqErr = res.Content()
	}

	if args.JSON {
		if reqErr != nil {
			_ = NewJSONErrorResponse("ask", reqErr).Write(env.Stdout)
			return reqErr
		}
		return NewJSONResponse("ask", res).Write(env.Stdout)
	}

	if reqErr != nil {
		fmt.Fprintln(env.Stderr, ErrorStyle.Render(msg.Content))
		env.Logger.Debug("ask failed", zap.Error(reqErr))
		return reqErr
	}

	if args.RawContent {
		fmt.Fprintln(env.Stdout, msg.Content)
		return nil
	}
	printReply(env, msg)
	if !args.Quiet {
		printRelated(env.Stdout, env.Session.RelatedQuestions())
	}
	return nil
}

// applyModel switches the session to the named model.
func applyModel(sess *session.Session, name string) error {
	m, err := perplexity.ParseModel(name)
	if err != nil {
		return NewUsageError(err.Error(), "--model sonar-pro")
	}
	return sess.UpdateSettings(func(s *perplexity.Settings) { s.Model = m })
}

// =============================================================================
// OUTPUT
// =============================================================================

// printReply renders msg the way the TUI does and writes it as markdown,
// styled through glamour when stdout is a terminal.
func printReply(env *Env, msg *model.Message) {
	md := env.Renderer.Render(msg).Markdown()
	if env.Styled {
		width := GetTerminalWidth()
		if env.Config != nil && env.Config.UI.WordWrap > 0 {
			width = env.Config.UI.WordWrap
		}
		md = renderMarkdown(md, env.Theme, width)
	}
	fmt.Fprintln(env.Stdout, strings.TrimRight(md, "\n"))
}

// renderMarkdown converts markdown to ANSI. It returns src unchanged when
// glamour cannot render it.
func renderMarkdown(src string, theme storage.Theme, width int) string {
	style := string(theme)
	if theme == storage.ThemeAuto {
		style = "auto"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}

func printRelated(w io.Writer, questions []string) {
	if len(questions) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Related"))
	for i, q := range questions {
		fmt.Fprintf(w, "  %s %s\n", DimStyle.Render(fmt.Sprintf("%d.", i+1)), q)
	}
}
