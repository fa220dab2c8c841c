// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// TestConfig_Default tests that the default configuration is valid.
func TestConfig_Default(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() config is invalid: %v", err)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v, want 60s", cfg.Timeout())
	}
	if cfg.CacheTTL() != 5*time.Minute {
		t.Errorf("CacheTTL() = %v, want 5m", cfg.CacheTTL())
	}
	if cfg.API.RequestsPerSecond != 0 {
		t.Error("rate limiting should be off by default")
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		field   string
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "empty base url", modify: func(c *Config) { c.API.BaseURL = "" }, wantErr: true, field: "api.base_url"},
		{name: "relative base url", modify: func(c *Config) { c.API.BaseURL = "chat.example.com" }, wantErr: true, field: "api.base_url"},
		{name: "ftp base url", modify: func(c *Config) { c.API.BaseURL = "ftp://chat.example.com" }, wantErr: true, field: "api.base_url"},
		{name: "timeout zero", modify: func(c *Config) { c.API.TimeoutSecs = 0 }, wantErr: true, field: "api.timeout_secs"},
		{name: "timeout too large", modify: func(c *Config) { c.API.TimeoutSecs = 601 }, wantErr: true, field: "api.timeout_secs"},
		{name: "negative rate", modify: func(c *Config) { c.API.RequestsPerSecond = -1 }, wantErr: true, field: "api.requests_per_second"},
		{name: "rate without burst", modify: func(c *Config) {
			c.API.RequestsPerSecond = 5
			c.API.Burst = 0
		}, wantErr: true, field: "api.burst"},
		{name: "terminal url unset is fine", modify: func(c *Config) { c.Terminal.BaseURL = "" }},
		{name: "terminal url invalid", modify: func(c *Config) { c.Terminal.BaseURL = "not a url" }, wantErr: true, field: "terminal.base_url"},
		{name: "ttl zero", modify: func(c *Config) { c.Cache.TTLSecs = 0 }, wantErr: true, field: "cache.ttl_secs"},
		{name: "page size too large", modify: func(c *Config) { c.Chat.PageSize = 500 }, wantErr: true, field: "chat.page_size"},
		{name: "bad log level", modify: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true, field: "logging.level"},
		{name: "upper case log level", modify: func(c *Config) { c.Logging.Level = "DEBUG" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error type = %T, want ValidateErrors", err)
			}
			if verrs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

// TestLoadFromPath_Formats tests TOML, YAML and JSON loading with default filling.
func TestLoadFromPath_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"config.toml": `
[api]
base_url = "https://chat.example.com"
api_key = "toml-key"

[chat]
default_model = "large"
`,
		"config.yaml": `
api:
  base_url: https://chat.example.com
  api_key: yaml-key
chat:
  default_model: large
`,
		"config.json": `{"api":{"base_url":"https://chat.example.com","api_key":"json-key"},"chat":{"default_model":"large"}}`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeFile(t, path, content)

			cfg, err := LoadFromPath(path)
			if err != nil {
				t.Fatalf("LoadFromPath() error = %v", err)
			}
			if cfg.API.BaseURL != "https://chat.example.com" {
				t.Errorf("BaseURL = %q", cfg.API.BaseURL)
			}
			wantKey := strings.TrimPrefix(filepath.Ext(name), ".") + "-key"
			if cfg.API.APIKey != wantKey {
				t.Errorf("APIKey = %q, want %q", cfg.API.APIKey, wantKey)
			}
			if cfg.Chat.DefaultModel != "large" {
				t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
			}
			// Filled from defaults
			if cfg.API.TimeoutSecs != 60 || cfg.Chat.PageSize != 20 || cfg.Cache.TTLSecs != 300 {
				t.Errorf("defaults not filled: %+v", cfg)
			}
		})
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	writeFile(t, broken, "[api\nbase_url = ")
	if _, err := LoadFromPath(broken); err == nil {
		t.Error("expected decode error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "chat:\n  page_size: 1000\n")
	if _, err := LoadFromPath(invalid); err == nil {
		t.Error("expected validation error")
	}
}

func TestFindConfigFile_Order(t *testing.T) {
	dir := t.TempDir()
	if _, ok := FindConfigFile(dir); ok {
		t.Fatal("empty dir should have no config")
	}

	writeFile(t, filepath.Join(dir, "config.json"), "{}")
	writeFile(t, filepath.Join(dir, "config.yaml"), "")
	path, ok := FindConfigFile(dir)
	if !ok || filepath.Base(path) != "config.yaml" {
		t.Errorf("FindConfigFile() = %q, want config.yaml before config.json", path)
	}
}

// TestApplyEnvOverrides tests environment variable overrides.
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RIGRUN_CHAT_API_URL", "https://env.example.com")
	t.Setenv("RIGRUN_CHAT_API_KEY", "env-key")
	t.Setenv("RIGRUN_CHAT_TERMINAL_URL", "https://term.example.com")
	t.Setenv("RIGRUN_CHAT_TERMINAL_KEY", "term-key")
	t.Setenv("RIGRUN_CHAT_MODEL", "env-model")
	t.Setenv("RIGRUN_CHAT_LOG_LEVEL", "DEBUG")
	t.Setenv("RIGRUN_CHAT_CACHE_TTL", "42")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://env.example.com" || cfg.API.APIKey != "env-key" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Terminal.BaseURL != "https://term.example.com" || cfg.Terminal.APIKey != "term-key" {
		t.Errorf("terminal = %+v", cfg.Terminal)
	}
	if cfg.Chat.DefaultModel != "env-model" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Cache.TTLSecs != 42 {
		t.Errorf("TTLSecs = %d, want 42", cfg.Cache.TTLSecs)
	}
}

// TestSave_RoundTrip tests that every saved format loads back unchanged.
func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := Default()
	original.API.APIKey = "secret"
	original.Cache.Persistent = true
	original.Chat.DefaultModel = "large"

	for _, name := range []string{"out.toml", "out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			if err := Save(original, path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			if runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				if err != nil {
					t.Fatal(err)
				}
				if info.Mode().Perm() != 0600 {
					t.Errorf("permissions = %o, want 600", info.Mode().Perm())
				}
			}

			loaded, err := LoadFromPath(path)
			if err != nil {
				t.Fatalf("LoadFromPath() error = %v", err)
			}
			if *loaded != *original {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
			}
		})
	}
}

// TestConfig_StringRedacts tests that keys never appear in String output.
func TestConfig_StringRedacts(t *testing.T) {
	cfg := Default()
	cfg.API.APIKey = "sk-very-secret"
	cfg.Terminal.APIKey = "term-secret"

	out := cfg.String()
	if strings.Contains(out, "sk-very-secret") || strings.Contains(out, "term-secret") {
		t.Errorf("String() leaked a key: %s", out)
	}
	if cfg.API.APIKey != "sk-very-secret" {
		t.Error("String() must not modify the config")
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	clone := original.Clone()
	clone.API.BaseURL = "https://other.example.com"

	if original.API.BaseURL == clone.API.BaseURL {
		t.Error("Clone should create an independent copy")
	}
}
