// sonarchat - a terminal chat client for the Perplexity API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/cli"
	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/logging"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/session"
	"github.com/jeranaias/sonarchat/internal/storage"
	"github.com/jeranaias/sonarchat/internal/ui/chat"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n\n", cli.ErrorStyle.Render("Error:"), err)
		cli.PrintUsage(os.Stderr)
		return cli.GetExitCode(err)
	}

	// These work without a valid config.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		return report(cli.HandleVersion(os.Stdout, args))
	case cli.CmdConfig:
		return report(cli.HandleConfig(&cli.Env{ConfigPath: args.ConfigPath, Stdout: os.Stdout, Stderr: os.Stderr}, args))
	}

	a, err := setup(args)
	if err != nil {
		return report(err)
	}
	defer a.close()

	if cmd == cli.CmdTUI {
		return report(runTUI(a))
	}
	return report(cli.Run(context.Background(), cmd, args, a.env(args)))
}

// report prints err and returns its exit code.
func report(err error) int {
	if err == nil {
		return cli.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Error:"), err)
	if strings.Contains(err.Error(), string(perplexity.LegacyDefaultModel)) {
		fmt.Fprintf(os.Stderr, "The %s model is no longer offered. Fix the config with:\n  sonarchat config set api.model %s\n",
			perplexity.LegacyDefaultModel, perplexity.ModelSonar)
	}
	return cli.GetExitCode(err)
}

// =============================================================================
// STARTUP
// =============================================================================

// app holds everything built from the configuration.
type app struct {
	cfg      *config.Config
	cfgPath  string
	logger   *zap.Logger
	store    storage.Store
	prefs    *storage.Preferences
	sess     *session.Session
	renderer *render.Renderer
	theme    storage.Theme
}

func setup(args cli.Args) (*app, error) {
	cfg, cfgPath, err := loadConfig(args.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if args.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level: level,
		File:  cfg.LogFile(),
		Debug: args.Debug || cfg.Log.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	store, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	prefs := storage.NewPreferences(store)

	client := perplexity.NewClient().
		WithBaseURL(cfg.API.BaseURL).
		WithTimeout(cfg.RequestTimeout()).
		WithLogger(logger)

	sess := session.New(session.Options{
		Completer:   client,
		Preferences: prefs,
		Settings:    cfg.API.Settings,
		Timeout:     cfg.RequestTimeout(),
		Logger:      logger,
	})
	if err := sess.LoadAPIKey(); err != nil {
		logger.Warn("stored API key unavailable", zap.Error(err))
	}
	if cfg.API.APIKey != "" {
		sess.UseAPIKey(cfg.API.APIKey)
	}
	if args.Model != "" {
		m, err := perplexity.ParseModel(args.Model)
		if err != nil {
			store.Close()
			return nil, cli.NewUsageError(err.Error(), "--model sonar-pro")
		}
		if err := sess.UpdateSettings(func(s *perplexity.Settings) { s.Model = m }); err != nil {
			logger.Warn("model override rejected", zap.String("model", args.Model), zap.Error(err))
		}
	}

	theme, err := prefs.Theme()
	if err != nil {
		logger.Warn("stored theme unavailable", zap.Error(err))
	}
	if theme == storage.ThemeAuto {
		theme, _ = storage.ParseTheme(cfg.UI.Theme)
	}

	logger.Info("starting",
		zap.String("version", Version),
		zap.String("model", string(sess.Settings().Model)),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("api_key", perplexity.KeyFingerprint(sess.APIKey())))

	return &app{
		cfg:      cfg,
		cfgPath:  cfgPath,
		logger:   logger,
		store:    store,
		prefs:    prefs,
		sess:     sess,
		renderer: render.New(render.WithLogger(logger)),
		theme:    theme,
	}, nil
}

// loadConfig loads path, or the default config file when path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		return cfg, path, err
	}
	path, err := config.ConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load()
	return cfg, path, err
}

func (a *app) env(args cli.Args) *cli.Env {
	return &cli.Env{
		Config:      a.cfg,
		ConfigPath:  a.cfgPath,
		Session:     a.sess,
		Renderer:    a.renderer,
		Prefs:       a.prefs,
		Theme:       a.theme,
		Logger:      a.logger,
		Interactive: cli.IsTTY(),
		Styled:      cli.IsStdoutTTY() && cli.ColorsEnabled() && !args.JSON,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(a *app) error {
	watcher, err := config.Watch(a.cfgPath, a.logger)
	if err != nil {
		a.logger.Warn("config hot reload disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	m := chat.New(chat.Options{
		Session:     a.sess,
		Theme:       styles.NewTheme(a.theme),
		Renderer:    a.renderer,
		Preferences: a.prefs,
		Watcher:     watcher,
		Hyperlinks:  a.cfg.UI.Hyperlinks,
		WordWrap:    a.cfg.UI.WordWrap,
		Version:     Version,
		Logger:      a.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running sonarchat: %w", err)
	}
	return nil
}
