// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/jeranaias/sonarchat/internal/model"
	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/ui/styles"
)

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestFmtNumber(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tc := range tests {
		if got := fmtNumber(tc.input); got != tc.want {
			t.Errorf("fmtNumber(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{0, "0s"},
		{3200 * time.Millisecond, "3.2s"},
		{65 * time.Second, "1m05s"},
		{10 * time.Minute, "10m00s"},
	}
	for _, tc := range tests {
		if got := formatElapsed(tc.input); got != tc.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// =============================================================================
// HEADER TESTS
// =============================================================================

func TestHeader_ShowsModelAndKeyState(t *testing.T) {
	h := NewHeader(testTheme())
	h.SetWidth(100)
	h.SetModel(perplexity.ModelSonarPro)

	out := plain(h.View())
	if !strings.Contains(out, "sonarchat") || !strings.Contains(out, "Sonar Pro") {
		t.Errorf("header missing title or model: %q", out)
	}
	if !strings.Contains(out, "no API key") {
		t.Errorf("header should warn about a missing key: %q", out)
	}

	h.SetAPIKey("pplx-abcdefghijklmnop")
	out = plain(h.View())
	if strings.Contains(out, "abcdefghijklmnop") {
		t.Errorf("header leaked the API key: %q", out)
	}
	if strings.Contains(out, "no API key") {
		t.Errorf("header still reports a missing key: %q", out)
	}
}

func TestHeader_FitsNarrowWidth(t *testing.T) {
	h := NewHeader(testTheme())
	h.SetWidth(30)
	for _, line := range strings.Split(plain(h.View()), "\n") {
		if w := len([]rune(line)); w > 30 {
			t.Errorf("header line is %d cells wide, want <= 30: %q", w, line)
		}
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar_Summary(t *testing.T) {
	s := NewStatusBar(testTheme())
	s.SetWidth(120)
	s.Settings.SearchRecencyFilter = perplexity.RecencyWeek
	s.Settings.SearchDomainFilter = []string{"a.com", "-b.com"}
	s.Messages = 4

	out := plain(s.View())
	for _, want := range []string{"sonar", "t=0.7", "week", "2 domains", "4 msgs", "settings"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q: %q", want, out)
		}
	}
}

func TestStatusBar_LoadingAndNotice(t *testing.T) {
	s := NewStatusBar(testTheme())
	s.SetLoading(true, 2*time.Second)
	out := plain(s.View())
	if !strings.Contains(out, "searching 2s") || !strings.Contains(out, "cancel") {
		t.Errorf("loading status bar = %q", out)
	}

	s.SetNotice("theme: light")
	if out := plain(s.View()); !strings.Contains(out, "theme: light") {
		t.Errorf("notice not shown: %q", out)
	}
}

// =============================================================================
// THINKING INDICATOR TESTS
// =============================================================================

func TestThinkingIndicator(t *testing.T) {
	ti := NewThinkingIndicator(testTheme())
	if ti.IsActive() || ti.View() != "" {
		t.Fatal("new indicator should be inactive and empty")
	}
	if cmd := ti.Start(time.Minute); cmd == nil {
		t.Error("Start should return a tick command")
	}
	out := plain(ti.View())
	if !strings.Contains(out, "Searching...") || !strings.Contains(out, "/ 1m00s") {
		t.Errorf("indicator view = %q", out)
	}
	ti.Stop()
	if ti.Elapsed() != 0 {
		t.Error("stopped indicator should report zero elapsed")
	}
}

func TestThinkingIndicator_PlainTerminal(t *testing.T) {
	theme := testTheme()
	theme.ColorProfile = termenv.Ascii
	ti := NewThinkingIndicator(theme)
	if got := ti.spinner.Spinner.Frames[0]; got != styles.DotsSpinner.Frames[0] {
		t.Errorf("first frame = %q, want the dots spinner", got)
	}
}

// =============================================================================
// RELATED LIST TESTS
// =============================================================================

func TestRelatedList(t *testing.T) {
	r := NewRelatedList(testTheme())
	if r.View() != "" || r.Height() != 0 {
		t.Fatal("empty list should render nothing")
	}
	r.SetQuestions([]string{"What is Go?", "Who made\nGo?"})
	if r.Height() != 3 {
		t.Errorf("Height() = %d, want 3", r.Height())
	}
	out := plain(r.View())
	if !strings.Contains(out, "+- 1 What is Go?") || !strings.Contains(out, "`- 2 Who made Go?") {
		t.Errorf("related view = %q", out)
	}

	r.Next()
	r.Next()
	r.Next()
	if r.Selected != 0 {
		t.Errorf("Selected = %d after wrapping, want 0", r.Selected)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessageBubble_Roles(t *testing.T) {
	theme := testTheme()

	user := NewMessageBubble(model.NewUserMessage("**not markdown**"), theme, nil)
	if out := plain(user.View()); !strings.Contains(out, "You") || !strings.Contains(out, "**not markdown**") {
		t.Errorf("user bubble should show content verbatim: %q", out)
	}

	reply := NewMessageBubble(model.NewErrorReply(), theme, nil)
	if out := plain(reply.View()); !strings.Contains(out, "Sonar") || !strings.Contains(out, model.ErrorReply) {
		t.Errorf("assistant bubble = %q", out)
	}

	cited := model.NewStructuredReply("not json [1]", []string{"https://a.example"})
	out := plain(NewMessageBubble(cited, theme, nil).View())
	if !strings.Contains(out, "1 source") {
		t.Errorf("assistant bubble should count sources: %q", out)
	}
}

func TestMessageList_CachesAndSeparates(t *testing.T) {
	ml := NewMessageList(testTheme(), nil)
	first := model.NewUserMessage("one")
	second := model.NewUserMessage("two")
	ml.SetMessages([]*model.Message{first, nil, second})

	out := plain(ml.View())
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Errorf("list view = %q", out)
	}
	if len(ml.cache) != 2 {
		t.Errorf("cache has %d entries, want 2", len(ml.cache))
	}
	ml.SetWidth(40)
	ml.View()
	if len(ml.cache) != 4 {
		t.Errorf("cache has %d entries after resize, want 4", len(ml.cache))
	}
}

// =============================================================================
// FUZZY TESTS
// =============================================================================

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		query, target string
		want          bool
	}{
		{"", "/help", true},
		{"mo", "/model", true},
		{"rcy", "/recency", true},
		{"MOD", "/model", true},
		{"zz", "/model", false},
		{"toolong", "/key", false},
	}
	for _, tc := range tests {
		if _, got := FuzzyMatch(tc.query, tc.target); got != tc.want {
			t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", tc.query, tc.target, got, tc.want)
		}
	}
}

func TestFuzzyFilter_RanksPrefixFirst(t *testing.T) {
	got := FuzzyFilter("re", []string{"/presets", "/regex", "/related", "/recency"})
	if len(got) != 4 {
		t.Fatalf("FuzzyFilter returned %v", got)
	}
	if got[0] != "/regex" {
		t.Errorf("best match = %q, want /regex", got[0])
	}
	if got[3] != "/presets" {
		t.Errorf("worst match = %q, want /presets", got[3])
	}
}

func TestCommandHints(t *testing.T) {
	theme := testTheme()
	commands := []string{"/help", "/model", "/export"}

	if got := CommandHints(theme, "hello", commands); got != "" {
		t.Errorf("plain input should give no hints, got %q", got)
	}
	if got := CommandHints(theme, "/model sonar", commands); got != "" {
		t.Errorf("command with arguments should give no hints, got %q", got)
	}
	if got := plain(CommandHints(theme, "/mo", commands)); got != "/model" {
		t.Errorf("hints = %q, want /model", got)
	}
	if got := plain(CommandHints(theme, "/zz", commands)); got != "no matching command" {
		t.Errorf("hints = %q", got)
	}
}

// =============================================================================
// WELCOME AND INPUT TESTS
// =============================================================================

func TestWelcome_PromptsForKey(t *testing.T) {
	w := NewWelcome(testTheme())
	w.Version = "v1.0.0"
	w.SetSize(100, 30)

	out := plain(w.View())
	for _, want := range []string{"sonarchat", "v1.0.0", "Sonar (Search", "No API key set", "settings"} {
		if !strings.Contains(out, want) {
			t.Errorf("welcome missing %q", want)
		}
	}

	w.HasKey = true
	if strings.Contains(plain(w.View()), "No API key set") {
		t.Error("welcome should not prompt for a key that is set")
	}
}

func TestInputArea_Modes(t *testing.T) {
	in := NewInputArea(testTheme())
	in.SetValue("hello")
	if in.Value() != "hello" {
		t.Fatalf("Value() = %q", in.Value())
	}

	in.SetMode(InputSecret)
	if in.Value() != "" || in.Mode() != InputSecret {
		t.Error("switching mode should clear the value")
	}
	in.SetValue("pplx-secret")
	if strings.Contains(plain(in.View()), "pplx-secret") {
		t.Error("secret input must not echo the key")
	}

	in.SetMode(InputQuery)
	in.SetValue(strings.Repeat("x", MaxQueryChars/2))
	if !strings.Contains(plain(in.View()), "2,048 / 4,096") {
		t.Error("long queries should show a counter")
	}
}
