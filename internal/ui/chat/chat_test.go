// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sonarchat/internal/config"
	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/session"
	"github.com/jeranaias/sonarchat/internal/storage"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeCompleter struct {
	result *perplexity.CompletionResult
	block  bool
}

func (f *fakeCompleter) StructuredCompletion(ctx context.Context, _, _ string, _ perplexity.Settings) (*perplexity.CompletionResult, error) {
	if f.block {
		<-ctx.Done()
		return nil, &perplexity.RequestError{StatusText: "request cancelled", Err: ctx.Err()}
	}
	return f.result, nil
}

func articleResult(related ...string) *perplexity.CompletionResult {
	return &perplexity.CompletionResult{
		ID:               "cmpl-1",
		RelatedQuestions: related,
		Choices: []perplexity.Choice{{
			Message: perplexity.Message{
				Role:    perplexity.RoleAssistant,
				Content: `{"title":"Go Generics","sections":[{"heading":"Overview","content":"Type parameters [1]."}],"citations":[{"number":1,"url":"https://go.dev/doc"}]}`,
			},
		}},
	}
}

func newTestModel(t *testing.T, c session.Completer, withKey bool) (Model, *storage.Preferences) {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	prefs := storage.NewPreferences(store)

	sess := session.New(session.Options{Completer: c, Preferences: prefs, Timeout: time.Minute})
	if withKey {
		sess.UseAPIKey("pplx-test")
	}
	m := New(Options{
		Session:     sess,
		Theme:       styles.NewTheme(storage.ThemeDark),
		Preferences: prefs,
		Hyperlinks:  false,
	})
	return update(m, tea.WindowSizeMsg{Width: 100, Height: 30}), prefs
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(m Model, s string) Model {
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m Model, k tea.KeyType) Model {
	return update(m, tea.KeyMsg{Type: k})
}

// responseFrom runs the commands in cmd until one yields a responseMsg.
func responseFrom(t *testing.T, cmd tea.Cmd) responseMsg {
	t.Helper()
	res, ok := collectResponse(cmd)
	if !ok {
		t.Fatal("no response command")
	}
	return res
}

func collectResponse(cmd tea.Cmd) (responseMsg, bool) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case responseMsg:
			return msg, true
		}
	}
	return responseMsg{}, false
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_ShowsReply(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{result: articleResult()}, true)

	m = typeText(m, "What are generics?")
	m, cmd := updateCmd(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Session().Loading())
	assert.Empty(t, m.InputValue())
	assert.Contains(t, m.View(), "Searching")

	m = update(m, responseFrom(t, cmd))
	assert.False(t, m.Session().Loading())

	msgs := m.Session().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "What are generics?", msgs[0].Content)
	assert.True(t, msgs[1].IsAssistant())

	view := m.View()
	assert.Contains(t, view, "Go Generics")
	assert.NotContains(t, view, "Searching")
}

func TestSubmit_WithoutKeyOpensKeyEntry(t *testing.T) {
	m, prefs := newTestModel(t, &fakeCompleter{result: articleResult()}, false)

	m = typeText(m, "hello")
	m = press(m, tea.KeyEnter)
	assert.Equal(t, ModeKeyEntry, m.Mode())
	assert.Empty(t, m.Session().Messages())
	assert.Contains(t, m.Notice(), "API key")

	m = typeText(m, "pplx-secret")
	assert.NotContains(t, m.View(), "pplx-secret")
	m = press(m, tea.KeyEnter)

	assert.Equal(t, ModeChat, m.Mode())
	assert.Equal(t, "pplx-secret", m.Session().APIKey())
	saved, err := prefs.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "pplx-secret", saved)
}

func TestKeyEntry_EscLeavesKeyUnchanged(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	m = press(m, tea.KeyCtrlK)
	require.Equal(t, ModeKeyEntry, m.Mode())

	m = typeText(m, "pplx-other")
	m = press(m, tea.KeyEsc)
	assert.Equal(t, ModeChat, m.Mode())
	assert.Equal(t, "pplx-test", m.Session().APIKey())
}

func TestEmptyInputIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	m, cmd := updateCmd(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.Session().Loading())
	assert.Empty(t, m.Session().Messages())
}

func TestCancel_ShowsApology(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{block: true}, true)

	m = typeText(m, "slow question")
	m, cmd := updateCmd(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Session().Loading())

	done := make(chan responseMsg, 1)
	go func() {
		res, _ := collectResponse(cmd)
		done <- res
	}()

	m = press(m, tea.KeyEsc)
	var res responseMsg
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("request was not cancelled")
	}
	require.Error(t, res.err)

	m = update(m, res)
	msgs := m.Session().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.ErrorReply, msgs[1].Content)
}

// =============================================================================
// COMMANDS, SETTINGS AND THEME
// =============================================================================

func TestSlashCommand_ChangesModel(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)

	m = typeText(m, "/model sonar-pro")
	m = press(m, tea.KeyEnter)

	assert.Equal(t, perplexity.ModelSonarPro, m.Session().Settings().Model)
	assert.Empty(t, m.Session().Messages(), "commands are not sent as queries")
	assert.Contains(t, m.View(), "Sonar Pro")
}

func TestSlashCommand_ErrorIsNotice(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)

	m = typeText(m, "/schema {broken")
	m = press(m, tea.KeyEnter)

	assert.True(t, strings.HasPrefix(m.Notice(), "error:"), m.Notice())
	assert.Equal(t, "none", perplexity.FormatKind(m.Session().Settings().ResponseFormat))
}

func TestSlashCommand_HelpGoesToConversation(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	m = typeText(m, "/help")
	m = press(m, tea.KeyEnter)

	msgs := m.Session().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "/domains")
}

func TestCommandHintsShownWhileTyping(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	m = typeText(m, "/rec")
	assert.Contains(t, m.View(), "/recency")
}

func TestSettingsPanel_AdjustsSession(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)

	m = press(m, tea.KeyCtrlS)
	require.Equal(t, ModeSettings, m.Mode())
	assert.Contains(t, m.View(), "Temperature")

	m = press(m, tea.KeyDown) // temperature
	m = press(m, tea.KeyRight)
	assert.InDelta(t, 0.8, m.Session().Settings().Temperature, 1e-9)

	m = press(m, tea.KeyEsc)
	assert.Equal(t, ModeChat, m.Mode())
}

func TestThemeToggle_Persists(t *testing.T) {
	m, prefs := newTestModel(t, &fakeCompleter{}, true)

	m = press(m, tea.KeyCtrlT)
	saved, err := prefs.Theme()
	require.NoError(t, err)
	assert.Equal(t, storage.ThemeLight, saved)
	assert.Contains(t, m.Notice(), "light")
}

func TestRelatedQuestions_TabFillsInput(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{result: articleResult("Are generics fast?", "When to use them?")}, true)

	m = typeText(m, "What are generics?")
	m, cmd := updateCmd(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(m, responseFrom(t, cmd))
	assert.Contains(t, m.View(), "Related")

	m = press(m, tea.KeyTab)
	assert.Equal(t, "Are generics fast?", m.InputValue())
	m = press(m, tea.KeyTab)
	assert.Equal(t, "When to use them?", m.InputValue())
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestConfigReload_AppliesSettings(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)

	cfg := config.Default()
	cfg.API.Temperature = 0.2
	cfg.API.RequestTimeoutSecs = 15
	m = update(m, configReloadMsg{cfg: cfg})

	assert.InDelta(t, 0.2, m.Session().Settings().Temperature, 1e-9)
	assert.Equal(t, 15*time.Second, m.Session().Timeout())
	assert.Equal(t, "config reloaded", m.Notice())
}

func TestConfigReload_KeepsResponseFormat(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	format := perplexity.JSONSchemaFormat{Schema: []byte(`{"type":"object"}`)}
	require.NoError(t, m.Session().UpdateSettings(func(s *perplexity.Settings) { s.ResponseFormat = format }))

	cfg := config.Default()
	cfg.API.Temperature = 0.4
	m = update(m, configReloadMsg{cfg: cfg})

	assert.InDelta(t, 0.4, m.Session().Settings().Temperature, 1e-9)
	assert.Equal(t, format, m.Session().Settings().ResponseFormat)
}

func TestConfigReload_InvalidSettingsKept(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)

	cfg := config.Default()
	cfg.API.Model = perplexity.LegacyDefaultModel
	m = update(m, configReloadMsg{cfg: cfg})

	assert.Equal(t, perplexity.ModelSonar, m.Session().Settings().Model)
	assert.Contains(t, m.Notice(), "error:")
}

func TestConfigError_IsNotice(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	m = update(m, configErrMsg{err: errors.New("bad toml")})
	assert.Contains(t, m.Notice(), "bad toml")
}

func TestNoticeExpires(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	m = update(m, configErrMsg{err: errors.New("first")})
	m = update(m, configErrMsg{err: errors.New("second")})

	m = update(m, clearNoticeMsg{seq: 1})
	assert.Contains(t, m.Notice(), "second", "an older timer must not clear a newer notice")
	m = update(m, clearNoticeMsg{seq: 2})
	assert.Empty(t, m.Notice())
}

// =============================================================================
// VIEW
// =============================================================================

func TestView_WelcomeBeforeFirstMessage(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{}, true)
	view := m.View()
	assert.Contains(t, view, "sonarchat")
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 30)
}

func TestView_BeforeSize(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	defer store.Close()
	m := New(Options{
		Session: session.New(session.Options{Preferences: storage.NewPreferences(store)}),
		Theme:   styles.NewTheme(storage.ThemeDark),
	})
	assert.Equal(t, "Loading...", m.View())
}
