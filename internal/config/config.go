// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/sonarchat/internal/perplexity"
	"github.com/jeranaias/sonarchat/internal/storage"
	"github.com/jeranaias/sonarchat/internal/util"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete sonarchat configuration.
type Config struct {
	Version string        `toml:"version" json:"version" yaml:"version"`
	API     APIConfig     `toml:"api" json:"api" yaml:"api"`
	UI      UIConfig      `toml:"ui" json:"ui" yaml:"ui"`
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`
	Log     LogConfig     `toml:"log" json:"log" yaml:"log"`
}

// APIConfig holds the request settings and how to reach the API.
type APIConfig struct {
	perplexity.Settings `yaml:",inline"`

	// APIKey is optional; the key saved with `sonarchat key set` is preferred.
	APIKey string `toml:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty"`

	BaseURL            string `toml:"base_url" json:"base_url" yaml:"base_url"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs" json:"request_timeout_secs" yaml:"request_timeout_secs"`
}

// UIConfig controls the terminal presentation.
type UIConfig struct {
	// Theme is auto, dark or light. A theme saved with Ctrl+T wins over this.
	Theme string `toml:"theme" json:"theme" yaml:"theme"`

	// Hyperlinks emits OSC 8 links; when false URLs are printed inline.
	Hyperlinks bool `toml:"hyperlinks" json:"hyperlinks" yaml:"hyperlinks"`

	// WordWrap caps the rendered width. 0 follows the terminal.
	WordWrap int `toml:"word_wrap" json:"word_wrap" yaml:"word_wrap"`
}

// StorageConfig selects the preferences store.
type StorageConfig struct {
	Backend string `toml:"backend" json:"backend" yaml:"backend"`
	Path    string `toml:"path" json:"path" yaml:"path"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `toml:"level" json:"level" yaml:"level"`

	// File is the log path. Empty means ~/.sonarchat/sonarchat.log, "off"
	// disables logging.
	File  string `toml:"file" json:"file" yaml:"file"`
	Debug bool   `toml:"debug" json:"debug" yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			Settings:           perplexity.DefaultSettings(),
			BaseURL:            perplexity.DefaultBaseURL,
			RequestTimeoutSecs: int(perplexity.DefaultTimeout / time.Second),
		},
		UI: UIConfig{
			Theme:      "auto",
			Hyperlinks: true,
		},
		Storage: StorageConfig{
			Backend: string(storage.BackendFile),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// RequestTimeout returns the per-request deadline.
func (c *Config) RequestTimeout() time.Duration {
	if c.API.RequestTimeoutSecs <= 0 {
		return perplexity.DefaultTimeout
	}
	return time.Duration(c.API.RequestTimeoutSecs) * time.Second
}

// LogFile resolves Log.File. It returns "" when logging is off.
func (c *Config) LogFile() string {
	switch strings.ToLower(strings.TrimSpace(c.Log.File)) {
	case "off", "none":
		return ""
	case "":
		dir, err := ConfigDir()
		if err != nil {
			return ""
		}
		return filepath.Join(dir, "sonarchat.log")
	default:
		return c.Log.File
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns ~/.sonarchat.
func ConfigDir() (string, error) {
	return storage.DefaultDir()
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ensureSecurePermissions tightens a config file to 0600. The file may
// hold an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.sonarchat/config.toml. A missing file yields the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the file at path, choosing the decoder by extension:
// .json, .yaml/.yml, anything else is TOML.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes the file at path over the defaults without applying
// environment overrides or validating. The config command edits files
// through it so that PPLX_API_KEY never ends up on disk.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := decode(cfg, path, data); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	fillDefaults(cfg)
	return cfg, nil
}

func decode(cfg *Config, path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to decode TOML: %w", err)
		}
	}
	return nil
}

// fillDefaults restores values a file explicitly blanked out.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.API.Model == "" {
		cfg.API.Model = defaults.API.Model
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.RequestTimeoutSecs == 0 {
		cfg.API.RequestTimeoutSecs = defaults.API.RequestTimeoutSecs
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path with mode 0600.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# sonarchat configuration file\n")
	buf.WriteString("# Generated by sonarchat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalYAMLText renders cfg as YAML with the API key redacted.
func (c *Config) MarshalYAMLText() (string, error) {
	data, err := yaml.Marshal(c.redacted())
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(data), nil
}

// MarshalTOMLText renders cfg as TOML with the API key redacted.
func (c *Config) MarshalTOMLText() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.redacted()); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.String(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is a problem with one config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every validation problem.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := c.API.Settings.Validate(); err != nil {
		for _, e := range unwrapAll(err) {
			errs = append(errs, ValidationError{Field: "api", Message: e.Error()})
		}
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host", c.API.BaseURL),
		})
	}
	if c.API.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.request_timeout_secs",
			Message: fmt.Sprintf("must be >= 0, got %d", c.API.RequestTimeoutSecs),
		})
	}

	if _, err := storage.ParseTheme(c.UI.Theme); err != nil {
		errs = append(errs, ValidationError{Field: "ui.theme", Message: err.Error()})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: fmt.Sprintf("must be >= 0, got %d", c.UI.WordWrap),
		})
	}

	switch storage.Backend(strings.ToLower(c.Storage.Backend)) {
	case storage.BackendFile, storage.BackendSQLite, "":
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite", c.Storage.Backend),
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies PPLX_API_KEY and SONARCHAT_* variables.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("PPLX_API_KEY"); key != "" {
		c.API.APIKey = key
	}
	if m := os.Getenv("SONARCHAT_MODEL"); m != "" {
		c.API.Model = perplexity.Model(strings.ToLower(strings.TrimSpace(m)))
	}
	if u := os.Getenv("SONARCHAT_BASE_URL"); u != "" {
		c.API.BaseURL = u
	}
	if lvl := os.Getenv("SONARCHAT_LOG_LEVEL"); lvl != "" {
		c.Log.Level = lvl
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns the value at a dotted key such as "api.temperature".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set parses value into the field at a dotted key. The caller validates.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	if err := setFieldValue(field, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, strings.ReplaceAll(strings.ToLower(part), "-", "_"))
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a field", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds a field by its toml name, descending into embedded structs.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if f, ok := fieldByTag(v.Field(i), name); ok {
				return f, true
			}
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("toml"), ",")
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setFieldValue(field reflect.Value, s string) error {
	s = strings.TrimSpace(s)
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value %q", s)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			switch strings.ToLower(s) {
			case "yes", "on":
				b = true
			case "no", "off":
				b = false
			default:
				return fmt.Errorf("invalid boolean %q", s)
			}
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type %s", field.Type())
		}
		var items []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// Keys lists every settable dotted key.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				walk(sf.Type, prefix)
				continue
			}
			tag, _, _ := strings.Cut(sf.Tag.Get("toml"), ",")
			if tag == "" || tag == "-" {
				continue
			}
			if sf.Type.Kind() == reflect.Struct {
				walk(sf.Type, prefix+tag+".")
				continue
			}
			keys = append(keys, prefix+tag)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.API.Settings = c.API.Settings.Clone()
	return &clone
}

func (c *Config) redacted() *Config {
	safe := c.Clone()
	if safe.API.APIKey != "" {
		safe.API.APIKey = perplexity.MaskKey(safe.API.APIKey)
	}
	return safe
}

// String returns indented JSON with the API key masked.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.redacted(), "", "  ")
	return string(data)
}
