// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal_cmd.go - Terminal session commands.
//
// The terminal host is configured separately from the chat API:
//   [terminal]
//   base_url = "https://term.example.com"
//   api_key  = "..."

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newTerminalCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Inspect terminal sessions",
	}
	cmd.AddCommand(newTerminalSessionsCmd(opts), newTerminalSessionCmd(opts))
	return cmd
}

func newTerminalSessionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List terminal sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				sessions, err := a.terminal.ListSessions(ctx)
				if err != nil {
					return err
				}
				return emit(cmd, opts, sessions, func(w io.Writer) error {
					if len(sessions) == 0 {
						_, err := fmt.Fprintln(w, DimStyle.Render("No terminal sessions."))
						return err
					}
					rows := make([][]string, 0, len(sessions))
					for _, s := range sessions {
						rows = append(rows, []string{s.ID, s.Name, s.Status, s.Shell, formatTime(s.CreatedAt)})
					}
					_, err := fmt.Fprintln(w, renderTable([]string{"ID", "NAME", "STATUS", "SHELL", "CREATED"}, rows))
					return err
				})
			})
		},
	}
}

func newTerminalSessionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session <id>",
		Short: "Show one terminal session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				s, err := a.terminal.GetSession(ctx, args[0])
				if err != nil {
					return err
				}
				return emit(cmd, opts, s, func(w io.Writer) error {
					fmt.Fprintln(w, TitleStyle.Render(s.Name))
					fmt.Fprintln(w, RenderField("ID", s.ID))
					fmt.Fprintln(w, RenderField("Status", s.Status))
					fmt.Fprintln(w, RenderField("Shell", s.Shell))
					fmt.Fprintln(w, RenderField("Created", formatTime(s.CreatedAt)))
					return nil
				})
			})
		},
	}
}
