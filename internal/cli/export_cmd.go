// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Thread export command.
//
// Examples:
//   rigrun-chat export 4f1c                  Markdown to a generated filename
//   rigrun-chat export 4f1c --format json -o notes.json
//   rigrun-chat export 4f1c -o -             Write to stdout

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/rigrun-chat/internal/export"
	"github.com/jeranaias/rigrun-chat/internal/model"
)

type exportResult struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Bytes    int    `json:"bytes"`
	Messages int    `json:"messages"`
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		format       string
		output       string
		noMetadata   bool
		noTimestamps bool
	)

	cmd := &cobra.Command{
		Use:   "export <thread-id>",
		Short: "Export a thread to Markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exOpts := export.DefaultOptions()
			exOpts.IncludeMetadata = !noMetadata
			exOpts.IncludeTimestamps = !noTimestamps
			exp, err := export.ForFormat(format, exOpts)
			if err != nil {
				return &UsageError{Message: err.Error()}
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tr, err := loadTranscript(ctx, a, args[0])
				if err != nil {
					return err
				}
				data, err := exp.Export(tr)
				if err != nil {
					return err
				}

				if output == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				path := output
				if path == "" {
					path = export.Filename(tr, exp, time.Now())
				}
				if dir := filepath.Dir(path); dir != "." {
					if err := os.MkdirAll(dir, 0755); err != nil {
						return fmt.Errorf("create output directory: %w", err)
					}
				}
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("write file: %w", err)
				}

				res := exportResult{Path: path, Format: format, Bytes: len(data), Messages: len(tr.Messages)}
				return emit(cmd, opts, res, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, RenderStatus("ok"), fmt.Sprintf("Exported %d messages to %s", res.Messages, res.Path))
					return err
				})
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "export format: md or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "omit frontmatter and footer")
	cmd.Flags().BoolVar(&noTimestamps, "no-timestamps", false, "omit per-message timestamps")
	return cmd
}

// loadTranscript fetches the thread and its messages concurrently.
func loadTranscript(ctx context.Context, a *app, threadID string) (export.Transcript, error) {
	var (
		thread model.Thread
		msgs   []model.Message
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := a.threads.GetThread(ctx, threadID)
		if err != nil {
			return err
		}
		thread = t
		return nil
	})
	g.Go(func() error {
		m, err := a.messages.ListMessages(ctx, threadID)
		if err != nil {
			return err
		}
		msgs = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return export.Transcript{}, err
	}
	return export.Transcript{Thread: thread, Messages: msgs}, nil
}
