// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-chat/internal/cache"
	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/repository"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

type appMode int

const (
	modeCommand appMode = iota
	modeTUI
)

// app is the dependency graph shared by all commands.
type app struct {
	cfg    *config.Config
	source *config.Source
	log    *zap.Logger
	client *transport.Client
	// persistent is nil unless cache.persistent is enabled.
	persistent *cache.SQLiteStore

	threads  *repository.ThreadRepository
	messages *repository.MessageRepository
	chat     *repository.ChatRepository
	prompts  *repository.SystemPromptRepository
	terminal *repository.TerminalRepository
}

// loadConfig reads the explicit file, or the default location.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return nil, "", &ConfigError{Err: err}
		}
		return cfg, path, nil
	}
	cfg, found, err := config.Load()
	if err != nil {
		return nil, "", &ConfigError{Err: err}
	}
	return cfg, found, nil
}

func newApp(opts *globalOptions, mode appMode) (*app, error) {
	cfg, path, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	// The TUI owns the terminal; logs go to a file.
	if mode == modeTUI && cfg.Logging.File == "" {
		if dir, err := config.ConfigDir(); err == nil {
			cfg.Logging.File = filepath.Join(dir, "rigrun-chat.log")
		}
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return buildApp(cfg, path, log)
}

// buildApp wires repositories for cfg.
func buildApp(cfg *config.Config, path string, log *zap.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		source: config.NewSource(cfg, path).WithLogger(log),
		log:    log,
	}
	a.client = newClient(cfg.API.BaseURL, cfg.API.APIKey, cfg, log)

	repoOpts := []repository.Option{
		repository.WithTTL(cfg.CacheTTL()),
		repository.WithSingleFlight(cfg.Cache.SingleFlight),
		repository.WithLogger(log),
	}
	if cfg.Cache.Persistent {
		p, err := cfg.CachePath()
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		store, err := cache.OpenSQLite(p, cfg.CacheTTL())
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("open cache: %w", err)}
		}
		a.persistent = store
		repoOpts = append(repoOpts, repository.WithPersistent(store))
	}

	a.threads = repository.NewThreadRepository(a.client, repoOpts...)
	a.messages = repository.NewMessageRepository(a.client, repoOpts...)
	a.chat = repository.NewChatRepository(a.client, repoOpts...)
	a.prompts = repository.NewSystemPromptRepository(a.client, repoOpts...)
	// The terminal host is read from the live source on every call
	a.terminal = repository.NewTerminalRepository(a.source, func(baseURL, apiKey string) transport.Doer {
		return newClient(baseURL, apiKey, cfg, log)
	}, repoOpts...)
	return a, nil
}

func newClient(baseURL, apiKey string, cfg *config.Config, log *zap.Logger) *transport.Client {
	return transport.NewClient(baseURL, apiKey).
		WithTimeout(cfg.Timeout()).
		WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst).
		WithLogger(log)
}

// Close releases the persistent cache and flushes the logger.
func (a *app) Close() error {
	var errs []error
	if a.persistent != nil {
		errs = append(errs, a.persistent.Close())
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}
