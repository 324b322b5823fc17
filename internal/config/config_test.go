// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sonarchat/internal/perplexity"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PPLX_API_KEY", "SONARCHAT_MODEL", "SONARCHAT_BASE_URL", "SONARCHAT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	assert.Equal(t, perplexity.ModelSonar, cfg.API.Model)
	assert.Equal(t, 0.7, cfg.API.Temperature)
	assert.Equal(t, 0.9, cfg.API.TopP)
	assert.Equal(t, 1.0, cfg.API.FrequencyPenalty)
	assert.Equal(t, perplexity.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout())
	assert.True(t, cfg.UI.Hyperlinks)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().API.Settings.Model, cfg.API.Model)
}

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[api]
model = "sonar-pro"
temperature = 0.2
search_domain_filter = ["example.com", "-spam.test"]
search_recency_filter = "week"
request_timeout_secs = 15

[ui]
theme = "light"
hyperlinks = false
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, perplexity.ModelSonarPro, cfg.API.Model)
	assert.Equal(t, 0.2, cfg.API.Temperature)
	assert.Equal(t, 0.9, cfg.API.TopP, "unset fields keep defaults")
	assert.Equal(t, []string{"example.com", "-spam.test"}, cfg.API.SearchDomainFilter)
	assert.Equal(t, perplexity.RecencyWeek, cfg.API.SearchRecencyFilter)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.False(t, cfg.UI.Hyperlinks)
}

func TestLoadFromPath_JSONAndYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	writeFile(t, jsonPath, `{"api": {"model": "sonar-reasoning", "top_k": 5}}`)
	cfg, err := LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, perplexity.ModelSonarReasoning, cfg.API.Model)
	assert.Equal(t, 5, cfg.API.TopK)

	yamlPath := filepath.Join(dir, "config.yaml")
	writeFile(t, yamlPath, "api:\n  model: sonar-reasoning-pro\n  presence_penalty: -1.5\nstorage:\n  backend: sqlite\n")
	cfg, err = LoadFromPath(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, perplexity.ModelSonarReasoningPro, cfg.API.Model)
	assert.Equal(t, -1.5, cfg.API.PresencePenalty)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "[api\nmodel=")
	_, err := LoadFromPath(bad)
	assert.Error(t, err)

	legacy := filepath.Join(dir, "legacy.toml")
	writeFile(t, legacy, "[api]\nmodel = \"sonar-medium\"\ntemperature = 3.0\n")
	_, err = LoadFromPath(legacy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not offered by the model selector")
	assert.Contains(t, err.Error(), "temperature")
}

func TestReadFile_SkipsEnvAndValidation(t *testing.T) {
	t.Setenv("PPLX_API_KEY", "pplx-env")
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[api]\nmodel = \"sonar-medium\"\n")

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, perplexity.LegacyDefaultModel, cfg.API.Model)
	assert.Empty(t, cfg.API.APIKey)
	assert.Error(t, cfg.Validate())
}

func TestLoadFromPath_FixesPermissions(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\n"), 0644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PPLX_API_KEY", "pplx-env")
	t.Setenv("SONARCHAT_MODEL", "Sonar-Pro")
	t.Setenv("SONARCHAT_BASE_URL", "http://localhost:9999")
	t.Setenv("SONARCHAT_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "pplx-env", cfg.API.APIKey)
	assert.Equal(t, perplexity.ModelSonarPro, cfg.API.Model)
	assert.Equal(t, "http://localhost:9999", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"timeout", func(c *Config) { c.API.RequestTimeoutSecs = -1 }, "api.request_timeout_secs"},
		{"theme", func(c *Config) { c.UI.Theme = "purple" }, "ui.theme"},
		{"wrap", func(c *Config) { c.UI.WordWrap = -3 }, "ui.word_wrap"},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"settings", func(c *Config) { c.API.TopP = 2 }, "api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_ValidateSplitsSettingsErrors(t *testing.T) {
	cfg := Default()
	cfg.API.Temperature = 5
	cfg.API.TopK = -1
	var verrs ValidateErrors
	require.ErrorAs(t, cfg.Validate(), &verrs)
	assert.Len(t, verrs, 2)
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("api.temperature", "1.25"))
	require.NoError(t, cfg.Set("api.model", "sonar-pro"))
	require.NoError(t, cfg.Set("api.search_domain_filter", "a.com, -b.com"))
	require.NoError(t, cfg.Set("api.return_related_questions", "yes"))
	require.NoError(t, cfg.Set("ui.word-wrap", "100"))

	v, err := cfg.Get("api.temperature")
	require.NoError(t, err)
	assert.Equal(t, 1.25, v)
	assert.Equal(t, perplexity.ModelSonarPro, cfg.API.Model)
	assert.Equal(t, []string{"a.com", "-b.com"}, cfg.API.SearchDomainFilter)
	assert.True(t, cfg.API.ReturnRelatedQuestions)
	assert.Equal(t, 100, cfg.UI.WordWrap)

	_, err = cfg.Get("api.nope")
	assert.ErrorContains(t, err, "unknown field: api.nope")
	assert.Error(t, cfg.Set("api", "x"))
	assert.Error(t, cfg.Set("api.top_k", "many"))
	assert.Error(t, cfg.Set("", "x"))
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api.model")
	assert.Contains(t, keys, "api.search_recency_filter")
	assert.Contains(t, keys, "api.api_key")
	assert.Contains(t, keys, "storage.backend")
	assert.NotContains(t, keys, "api.response_format")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestConfig_CloneIsDeep(t *testing.T) {
	cfg := Default()
	cfg.API.SearchDomainFilter = []string{"a.com"}
	clone := cfg.Clone()
	clone.API.SearchDomainFilter[0] = "b.com"
	assert.Equal(t, "a.com", cfg.API.SearchDomainFilter[0])
}

func TestConfig_StringRedactsKey(t *testing.T) {
	cfg := Default()
	cfg.API.APIKey = "pplx-supersecretkey"

	assert.NotContains(t, cfg.String(), "supersecret")
	y, err := cfg.MarshalYAMLText()
	require.NoError(t, err)
	assert.NotContains(t, y, "supersecret")
	assert.Contains(t, y, "model: sonar")
	assert.Equal(t, "pplx-supersecretkey", cfg.API.APIKey)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.API.Model = perplexity.ModelSonarPro
	cfg.API.SearchDomainFilter = []string{"example.com"}
	cfg.UI.Theme = "dark"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# sonarchat configuration file"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.Settings, loaded.API.Settings)
	assert.Equal(t, "dark", loaded.UI.Theme)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[api]\nmodel = \"sonar\"\n")

	w, err := Watch(path, nil)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, "[api]\nmodel = \"sonar-pro\"\n")

	select {
	case cfg := <-w.Updates():
		assert.Equal(t, perplexity.ModelSonarPro, cfg.API.Model)
	case err := <-w.Errors():
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
}

func TestWatch_ReportsInvalidFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[api]\n")

	w, err := Watch(path, nil)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, "[api]\ntemperature = 9.0\n")

	select {
	case err := <-w.Errors():
		assert.Contains(t, err.Error(), "temperature")
	case <-time.After(5 * time.Second):
		t.Fatal("no error within 5s")
	}
}
