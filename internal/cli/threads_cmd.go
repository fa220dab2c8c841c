// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// threads_cmd.go - Thread and message commands.
//
// Examples:
//   rigrun-chat threads                      First page of threads
//   rigrun-chat threads --limit 50 --offset 50
//   rigrun-chat thread 4f1c                  Show one thread
//   rigrun-chat messages 4f1c --json         Messages as JSON

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/util"
)

const timeLayout = "2006-01-02 15:04"

func newThreadsCmd(opts *globalOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List conversation threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return &UsageError{Message: "--limit must be positive"}
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				threads, err := a.threads.ListThreads(ctx, limit, offset)
				if err != nil {
					return err
				}
				return emit(cmd, opts, threads, func(w io.Writer) error {
					return printThreads(w, threads)
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of threads to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of threads to skip")
	return cmd
}

func newThreadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <id>",
		Short: "Show one thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				t, err := a.threads.GetThread(ctx, args[0])
				if err != nil {
					return err
				}
				return emit(cmd, opts, t, func(w io.Writer) error {
					fmt.Fprintln(w, TitleStyle.Render(t.DisplayTitle()))
					fmt.Fprintln(w, RenderField("ID", t.ID))
					fmt.Fprintln(w, RenderField("Messages", strconv.Itoa(t.MessageCount)))
					fmt.Fprintln(w, RenderField("Created", formatTime(t.CreatedAt)))
					fmt.Fprintln(w, RenderField("Updated", formatTime(t.UpdatedAt)))
					return nil
				})
			})
		},
	}
}

func newMessagesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <thread-id>",
		Short: "Show the messages of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				msgs, err := a.messages.ListMessages(ctx, args[0])
				if err != nil {
					return err
				}
				return emit(cmd, opts, msgs, func(w io.Writer) error {
					return printMessages(w, msgs)
				})
			})
		},
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func printThreads(w io.Writer, threads []model.Thread) error {
	if len(threads) == 0 {
		_, err := fmt.Fprintln(w, DimStyle.Render("No threads."))
		return err
	}
	rows := make([][]string, 0, len(threads))
	for _, t := range threads {
		rows = append(rows, []string{
			t.ID,
			util.Truncate(util.SingleLine(t.DisplayTitle()), 48),
			strconv.Itoa(t.MessageCount),
			formatTime(t.UpdatedAt),
		})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"ID", "TITLE", "MESSAGES", "UPDATED"}, rows))
	return err
}

func printMessages(w io.Writer, msgs []model.Message) error {
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(w, DimStyle.Render("No messages."))
		return err
	}
	for i, m := range msgs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, TitleStyle.Render(m.Role.DisplayName()), DimStyle.Render(formatTime(m.CreatedAt)))
		if m.Content != "" {
			fmt.Fprintln(w, m.Content)
		}
		for _, call := range m.ToolCalls {
			fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("-> %s(%s)", call.Name, string(call.Arguments))))
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
