// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/rigrun-chat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigrun-chat configuration.
type Config struct {
	// Chat backend
	API APIConfig `toml:"api" json:"api" yaml:"api"`

	// Terminal session host
	Terminal TerminalConfig `toml:"terminal" json:"terminal" yaml:"terminal"`

	// Cache configuration
	Cache CacheConfig `toml:"cache" json:"cache" yaml:"cache"`

	// Chat defaults
	Chat ChatConfig `toml:"chat" json:"chat" yaml:"chat"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// APIConfig contains the chat backend settings.
type APIConfig struct {
	// BaseURL is the backend root, e.g. https://chat.example.com
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url"`

	// APIKey is sent as X-API-Key. Empty sends no key.
	APIKey string `toml:"api_key" json:"api_key" yaml:"api_key"`

	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`

	// RequestsPerSecond limits outgoing requests. 0 disables the limit.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the number of requests allowed above the rate.
	Burst int `toml:"burst" json:"burst" yaml:"burst"`
}

// TerminalConfig contains the terminal session host settings.
type TerminalConfig struct {
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url"`
	APIKey  string `toml:"api_key" json:"api_key" yaml:"api_key"`
}

// CacheConfig contains cache settings.
type CacheConfig struct {
	// TTLSecs is the expiration of cached reads.
	TTLSecs int `toml:"ttl_secs" json:"ttl_secs" yaml:"ttl_secs"`

	// Persistent keeps cached reads in a SQLite file across runs.
	Persistent bool `toml:"persistent" json:"persistent" yaml:"persistent"`

	// Path of the SQLite file. Defaults to cache.db in the config directory.
	Path string `toml:"path" json:"path" yaml:"path"`

	// SingleFlight collapses concurrent identical reads into one request.
	SingleFlight bool `toml:"single_flight" json:"single_flight" yaml:"single_flight"`
}

// ChatConfig contains chat defaults.
type ChatConfig struct {
	DefaultModel string `toml:"default_model" json:"default_model" yaml:"default_model"`
	PageSize     int    `toml:"page_size" json:"page_size" yaml:"page_size"`
	SystemPrompt string `toml:"system_prompt" json:"system_prompt" yaml:"system_prompt"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Development enables human-readable console output.
	Development bool `toml:"development" json:"development" yaml:"development"`

	// File receives log output instead of stderr.
	File string `toml:"file" json:"file" yaml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a new Config with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8080",
			TimeoutSecs: 60,
			Burst:       10,
		},
		Cache: CacheConfig{
			TTLSecs: 300,
		},
		Chat: ChatConfig{
			PageSize: 20,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Timeout returns the request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// CacheTTL returns the cache expiration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSecs) * time.Second
}

// CachePath returns the SQLite cache file path.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// configFiles lists the file names Load looks for, in order.
var configFiles = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// ConfigDir returns the rigrun-chat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigrun-chat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// FindConfigFile returns the first existing config file in dir.
func FindConfigFile(dir string) (string, bool) {
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory, applies environment
// overrides and validates the result. It returns the file used, or "" when
// only defaults and the environment apply.
func Load() (*Config, string, error) {
	dir, err := ConfigDir()
	if err == nil {
		if path, ok := FindConfigFile(dir); ok {
			cfg, err := LoadFromPath(path)
			return cfg, path, err
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, "", nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The format follows the file extension; unknown extensions are
// read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := LoadYAML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load YAML config from %s: %w", path, err)
		}
	default:
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	warnPermissions(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadYAML loads configuration from a YAML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadYAML(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

func warnPermissions(path string) {
	// Permissions might not be fixable on all systems
	if err := ensureSecurePermissions(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	// API
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = defaults.API.Burst
	}

	// Cache
	if cfg.Cache.TTLSecs == 0 {
		cfg.Cache.TTLSecs = defaults.Cache.TTLSecs
	}

	// Chat
	if cfg.Chat.PageSize == 0 {
		cfg.Chat.PageSize = defaults.Chat.PageSize
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

const fileHeader = `# rigrun-chat configuration file
# Generated by rigrun-chat - edit with care

`

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Config files are written with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveYAML saves the configuration to a YAML file.
func SaveYAML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.WriteFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Save writes cfg in the format implied by the extension of path.
func Save(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(cfg, path)
	case ".yaml", ".yml":
		return SaveYAML(cfg, path)
	default:
		return SaveTOML(cfg, path)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
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

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// API
	if msg := checkHTTPURL(c.API.BaseURL); msg != "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: msg})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_second", Message: "must not be negative"})
	}
	if c.API.RequestsPerSecond > 0 && c.API.Burst < 1 {
		errs = append(errs, ValidationError{Field: "api.burst", Message: "must be at least 1 when rate limiting"})
	}

	// Terminal: optional, checked when set
	if c.Terminal.BaseURL != "" {
		if msg := checkHTTPURL(c.Terminal.BaseURL); msg != "" {
			errs = append(errs, ValidationError{Field: "terminal.base_url", Message: msg})
		}
	}

	// Cache
	if c.Cache.TTLSecs < 1 || c.Cache.TTLSecs > 86400 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl_secs",
			Message: fmt.Sprintf("must be between 1 and 86400, got %d", c.Cache.TTLSecs),
		})
	}

	// Chat
	if c.Chat.PageSize < 1 || c.Chat.PageSize > 200 {
		errs = append(errs, ValidationError{
			Field:   "chat.page_size",
			Message: fmt.Sprintf("must be between 1 and 200, got %d", c.Chat.PageSize),
		})
	}

	// Logging
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkHTTPURL(raw string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return "missing host"
	}
	return ""
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RIGRUN_CHAT_API_URL: overrides api.base_url
//   - RIGRUN_CHAT_API_KEY: overrides api.api_key
//   - RIGRUN_CHAT_TERMINAL_URL: overrides terminal.base_url
//   - RIGRUN_CHAT_TERMINAL_KEY: overrides terminal.api_key
//   - RIGRUN_CHAT_MODEL: overrides chat.default_model
//   - RIGRUN_CHAT_LOG_LEVEL: overrides logging.level
//   - RIGRUN_CHAT_CACHE_TTL: overrides cache.ttl_secs
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RIGRUN_CHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("RIGRUN_CHAT_API_KEY"); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv("RIGRUN_CHAT_TERMINAL_URL"); v != "" {
		c.Terminal.BaseURL = v
	}
	if v := os.Getenv("RIGRUN_CHAT_TERMINAL_KEY"); v != "" {
		c.Terminal.APIKey = v
	}
	if v := os.Getenv("RIGRUN_CHAT_MODEL"); v != "" {
		c.Chat.DefaultModel = v
	}
	if v := os.Getenv("RIGRUN_CHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("RIGRUN_CHAT_CACHE_TTL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLSecs = secs
		}
	}
}

// =============================================================================
// COPY AND DISPLAY
// =============================================================================

// Clone creates a copy of the configuration. Config holds no reference
// types, so a value copy is complete.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as JSON for debugging.
// SECURITY: Redacts API keys to prevent accidental exposure in logs.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.API.APIKey != "" {
		safe.API.APIKey = "[REDACTED]"
	}
	if safe.Terminal.APIKey != "" {
		safe.Terminal.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
