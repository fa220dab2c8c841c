// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for rigrun-chat.
//
// Supports TOML, YAML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Chat backend endpoint, credential and request limits
//   - TerminalConfig: Terminal session host, configured separately
//   - CacheConfig: Cache expiration and the optional SQLite cache
//   - Source: The live configuration, reloaded when the file changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RIGRUN_CHAT_*)
//   - ~/.rigrun-chat/config.toml
//   - ~/.rigrun-chat/config.yaml
//   - ~/.rigrun-chat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, path, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Keep it live:
//
//	src := config.NewSource(cfg, path)
//	go src.Watch(ctx)
//	baseURL, key := src.TerminalEndpoint()
package config
