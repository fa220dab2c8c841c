// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt_cmd.go - System prompt commands.
//
// Examples:
//   rigrun-chat prompt get default
//   rigrun-chat prompt set default "You are a concise assistant."
//   rigrun-chat prompt set default --file prompt.md

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigrun-chat/internal/model"
)

func newPromptCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Read and replace system prompts",
	}
	cmd.AddCommand(newPromptGetCmd(opts), newPromptSetCmd(opts))
	return cmd
}

func newPromptGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a system prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				p, err := a.prompts.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return emit(cmd, opts, p, func(w io.Writer) error {
					return printPrompt(w, p)
				})
			})
		},
	}
}

func newPromptSetCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set <name> [content]",
		Short: "Replace a system prompt",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := promptContent(args, file)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				p, err := a.prompts.Update(ctx, args[0], content)
				if err != nil {
					return err
				}
				return emit(cmd, opts, p, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, SuccessStyle.Render("Updated"), p.Name)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the prompt content from a file")
	return cmd
}

// promptContent takes the content from exactly one of the argument and the
// file flag.
func promptContent(args []string, file string) (string, error) {
	switch {
	case len(args) == 2 && file != "":
		return "", &UsageError{Message: "give the content as an argument or with --file, not both"}
	case len(args) == 2:
		return args[1], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read prompt file: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	default:
		return "", &UsageError{Message: "prompt content is required"}
	}
}

func printPrompt(w io.Writer, p model.SystemPrompt) error {
	fmt.Fprintln(w, TitleStyle.Render(p.Name))
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintln(w, DimStyle.Render("updated "+formatTime(p.UpdatedAt)))
	}
	_, err := fmt.Fprintln(w, p.Content)
	return err
}
