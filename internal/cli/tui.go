// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/store"
	"github.com/jeranaias/rigrun-chat/internal/ui/chat"
)

// runTUI starts the interactive chat view and blocks until it exits.
func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	a, err := opts.newApp(opts, modeTUI)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a.source.OnChange(func(*config.Config) {
		a.log.Info("configuration reloaded", zap.String("path", a.source.Path()))
	})
	go func() {
		if err := a.source.Watch(ctx); err != nil {
			a.log.Warn("config watch stopped", zap.Error(err))
		}
	}()

	st := store.New(a.threads, a.messages, a.chat,
		store.WithPageSize(a.cfg.Chat.PageSize),
		store.WithDefaultModel(a.cfg.Chat.DefaultModel),
		store.WithSystemPrompt(a.cfg.Chat.SystemPrompt),
		store.WithLogger(a.log),
	)
	defer st.Close()

	view := chat.New(chat.Options{Store: st, Logger: a.log})
	p := tea.NewProgram(view, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
