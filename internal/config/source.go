// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce coalesces the burst of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// Source holds the live configuration. It is safe for concurrent use.
type Source struct {
	mu       sync.RWMutex
	cfg      *Config
	path     string
	log      *zap.Logger
	onChange []func(*Config)
}

// NewSource wraps cfg. path is the file cfg was loaded from and may be ""
// when there is nothing to watch.
func NewSource(cfg *Config, path string) *Source {
	if cfg == nil {
		cfg = Default()
	}
	return &Source{cfg: cfg.Clone(), path: path, log: zap.NewNop()}
}

// WithLogger sets the logger for reload diagnostics.
func (s *Source) WithLogger(log *zap.Logger) *Source {
	if log != nil {
		s.log = log
	}
	return s
}

// Config returns a copy of the current configuration.
func (s *Source) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Path returns the watched file path.
func (s *Source) Path() string {
	return s.path
}

// Set replaces the configuration and notifies listeners.
func (s *Source) Set(cfg *Config) {
	s.mu.Lock()
	s.cfg = cfg.Clone()
	listeners := slices.Clone(s.onChange)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg.Clone())
	}
}

// OnChange registers fn to run after every successful reload.
func (s *Source) OnChange(fn func(*Config)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// TerminalEndpoint returns the terminal host settings.
func (s *Source) TerminalEndpoint() (baseURL, apiKey string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Terminal.BaseURL, s.cfg.Terminal.APIKey
}

// Reload reads the file again. An invalid file leaves the current
// configuration in place.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	cfg, err := LoadFromPath(s.path)
	if err != nil {
		return err
	}
	s.Set(cfg)
	return nil
}

// Watch reloads the configuration whenever the file changes, until ctx is
// done. The directory is watched so editors that replace the file by rename
// are seen.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}

	target := filepath.Clean(s.path)
	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(reloadDebounce)
			}

		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.log.Warn("config reload failed, keeping previous config", zap.String("path", s.path), zap.Error(err))
				continue
			}
			s.log.Info("config reloaded", zap.String("path", s.path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("config watcher error", zap.Error(err))
		}
	}
}
