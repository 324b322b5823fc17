// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sonarchat/internal/commands"
	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/render"
	"github.com/jeranaias/sonarchat/internal/session"
	"github.com/jeranaias/sonarchat/internal/storage"
	"github.com/jeranaias/sonarchat/internal/ui/components"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// VIEW MODE
// =============================================================================

// Mode is what the chat view currently shows around the input.
type Mode int

const (
	ModeChat     Mode = iota // conversation and query input
	ModeSettings             // settings panel over the conversation
	ModeKeyEntry             // hidden API key input
)

func (m Mode) String() string {
	switch m {
	case ModeSettings:
		return "settings"
	case ModeKeyEntry:
		return "key entry"
	default:
		return "chat"
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a chat Model.
type Options struct {
	Session     *session.Session
	Theme       *styles.Theme
	Renderer    *render.Renderer
	Preferences *storage.Preferences

	// Watcher delivers config file reloads. Nil disables hot reload.
	Watcher *config.Watcher

	// Hyperlinks emits OSC 8 links; otherwise links print their URL.
	Hyperlinks bool

	// WordWrap caps the conversation width. 0 follows the terminal.
	WordWrap int

	Version string
	Logger  *zap.Logger
}

// Model is the Bubble Tea model of the chat view.
type Model struct {
	sess     *session.Session
	prefs    *storage.Preferences
	watcher  *config.Watcher
	registry *commands.Registry
	cmdCtx   *commands.Context
	theme    *styles.Theme
	logger   *zap.Logger

	mode          Mode
	width, height int
	wordWrap      int
	ready         bool

	keys         KeyMap
	settingsKeys SettingsKeyMap
	help         help.Model

	viewport viewport.Model
	header   *components.Header
	messages *components.MessageList
	thinking components.ThinkingIndicator
	related  *components.RelatedList
	settings *components.SettingsPanel
	input    *components.InputArea
	status   *components.StatusBar
	welcome  *components.Welcome

	cancelMgr *cancelManager
	noticeSeq *int
}

// New creates the chat view for opts.Session.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(storage.ThemeAuto)
	}
	r := opts.Renderer
	if r == nil {
		r = render.New(render.WithLogger(logger))
	}

	m := Model{
		sess:         opts.Session,
		prefs:        opts.Preferences,
		watcher:      opts.Watcher,
		registry:     commands.NewRegistry(),
		cmdCtx:       commands.NewContext(opts.Session, r, logger),
		theme:        theme,
		logger:       logger,
		keys:         DefaultKeyMap(),
		settingsKeys: DefaultSettingsKeyMap(),
		help:         help.New(),
		viewport:     viewport.New(80, 20),
		header:       components.NewHeader(theme),
		messages:     components.NewMessageList(theme, r),
		thinking:     components.NewThinkingIndicator(theme),
		related:      components.NewRelatedList(theme),
		settings:     components.NewSettingsPanel(theme, opts.Session.Settings()),
		input:        components.NewInputArea(theme),
		status:       components.NewStatusBar(theme),
		welcome:      components.NewWelcome(theme),
		cancelMgr:    newCancelManager(),
		noticeSeq:    new(int),
		wordWrap:     opts.WordWrap,
	}
	m.messages.Hyperlinks = opts.Hyperlinks
	m.welcome.Version = opts.Version
	m.input.Focus()
	m.refresh()
	return m
}

// Init starts the cursor blink and the config watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, watchConfig(m.watcher))
}

// =============================================================================
// SETTINGS, THEME AND KEY
// =============================================================================

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.settings.Load(m.sess.Settings())
	m.mode = ModeSettings
	m.input.Blur()
	m.layout()
	return m, nil
}

func (m Model) closeSettings() (tea.Model, tea.Cmd) {
	m.mode = ModeChat
	cmd := m.input.Focus()
	m.layout()
	return m, cmd
}

// applySettingsPanel stores the panel's settings in the session. A rejected
// edit reloads the panel from the session.
func (m *Model) applySettingsPanel() tea.Cmd {
	if err := m.sess.SetSettings(m.settings.Settings()); err != nil {
		m.settings.Load(m.sess.Settings())
		return m.notifyErr(err)
	}
	m.refresh()
	return nil
}

func (m Model) enterKeyMode() (tea.Model, tea.Cmd) {
	m.mode = ModeKeyEntry
	m.input.SetMode(components.InputSecret)
	cmd := m.input.Focus()
	m.layout()
	return m, cmd
}

func (m Model) leaveKeyMode() Model {
	m.mode = ModeChat
	m.input.SetMode(components.InputQuery)
	m.input.Focus()
	m.refresh()
	return m
}

// toggleTheme flips the palette and persists the choice.
func (m *Model) toggleTheme() tea.Cmd {
	m.theme.SetDark(!m.theme.IsDark)
	m.input.ApplyTheme(m.theme)
	m.refresh()
	if m.prefs != nil {
		if err := m.prefs.SaveTheme(m.theme.Preference()); err != nil {
			m.logger.Warn("failed to save theme", zap.Error(err))
			return m.notifyErr(err)
		}
	}
	return m.notify("theme: " + string(m.theme.Preference()))
}

func (m Model) handleConfigReload(msg configReloadMsg) (tea.Model, tea.Cmd) {
	cfg := msg.cfg
	cmds := []tea.Cmd{watchConfig(m.watcher)}

	if m.sess.Loading() {
		m.logger.Info("config reloaded during a request; it applies from the next query")
	}
	settings := cfg.API.Settings
	if settings.ResponseFormat == nil {
		// The config file never carries a response format.
		settings.ResponseFormat = m.sess.Settings().ResponseFormat
	}
	if err := m.sess.SetSettings(settings); err != nil {
		cmds = append(cmds, m.notifyErr(err))
		return m, tea.Batch(cmds...)
	}
	m.sess.SetTimeout(cfg.RequestTimeout())
	m.messages.Hyperlinks = cfg.UI.Hyperlinks
	m.wordWrap = cfg.UI.WordWrap

	if pref, err := storage.ParseTheme(cfg.UI.Theme); err == nil && pref != storage.ThemeAuto {
		if dark := pref == storage.ThemeDark; dark != m.theme.IsDark {
			m.theme.SetDark(dark)
			m.input.ApplyTheme(m.theme)
		}
	}
	if m.mode == ModeSettings {
		m.settings.Load(m.sess.Settings())
	}
	m.refresh()
	m.logger.Info("config reloaded")
	cmds = append(cmds, m.notify("config reloaded"))
	return m, tea.Batch(cmds...)
}

// =============================================================================
// NOTICES
// =============================================================================

func (m *Model) notify(text string) tea.Cmd {
	*m.noticeSeq++
	m.status.SetNotice(text)
	return clearNoticeAfter(*m.noticeSeq)
}

func (m *Model) notifyErr(err error) tea.Cmd {
	return m.notify("error: " + err.Error())
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Mode returns the current view mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Session returns the chat session.
func (m Model) Session() *session.Session {
	return m.sess
}

// InputValue returns the text in the input box.
func (m Model) InputValue() string {
	return m.input.Value()
}

// Notice returns the status notice currently shown.
func (m Model) Notice() string {
	return m.status.Notice
}
