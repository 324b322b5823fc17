// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/sonarchat/internal/storage"
)

func TestNewTheme_ExplicitPreference(t *testing.T) {
	dark := NewTheme(storage.ThemeDark)
	assert.True(t, dark.IsDark)
	assert.True(t, lipgloss.HasDarkBackground())
	assert.Equal(t, storage.ThemeDark, dark.Preference())

	light := NewTheme(storage.ThemeLight)
	assert.False(t, light.IsDark)
	assert.False(t, lipgloss.HasDarkBackground())
	assert.Equal(t, storage.ThemeLight, light.Preference())
}

func TestTheme_SetDarkTogglesPalette(t *testing.T) {
	th := NewTheme(storage.ThemeLight)
	th.SetDark(true)
	assert.True(t, th.IsDark)
	assert.Equal(t, storage.ThemeDark, th.Preference())
	assert.Equal(t, storage.ThemeLight, th.Preference().Toggle(th.IsDark))
}

func TestTheme_LayoutMode(t *testing.T) {
	th := NewTheme(storage.ThemeDark)
	for width, want := range map[int]LayoutMode{40: LayoutNarrow, 80: LayoutMedium, 120: LayoutWide} {
		th.SetSize(width, 24)
		assert.Equal(t, want, th.GetLayoutMode(), width)
	}
}

func TestRenderHelpers_IncludeIndicators(t *testing.T) {
	assert.True(t, strings.Contains(RenderSuccess("saved"), "[OK] saved"))
	assert.True(t, strings.Contains(RenderError("failed"), "[X] failed"))
	assert.True(t, strings.Contains(RenderWarning("careful"), "[!] careful"))
	assert.True(t, strings.Contains(RenderInfo("note"), "[i] note"))
}

func TestSpinnerConfig(t *testing.T) {
	assert.Equal(t, time.Second/8, SearchSpinner.Duration())
	assert.Equal(t, time.Second, SpinnerConfig{}.Duration())

	s := DotsSpinner.Bubble()
	assert.Equal(t, DotsSpinner.Frames, s.Frames)
	assert.Equal(t, DotsSpinner.Duration(), s.FPS)
}

func TestRenderTreeLine(t *testing.T) {
	assert.Equal(t, "+- ", RenderTreeLine(false))
	assert.Equal(t, "`- ", RenderTreeLine(true))
}
