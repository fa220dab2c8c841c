// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat_cmd.go - Send a chat turn and list models.
//
// Examples:
//   rigrun-chat send "Summarize the release notes"
//   rigrun-chat send --thread 4f1c "And the breaking changes?"
//   rigrun-chat send --sync --model qwen2.5 "Hello"
//
// The streamed reply is written to stdout as it arrives. With --sync the
// reply is fetched in one response and rendered as markdown on a terminal.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/stream"
)

// sendResult is the --json output of send.
type sendResult struct {
	ThreadID  string           `json:"thread_id,omitempty"`
	MessageID string           `json:"message_id,omitempty"`
	Content   string           `json:"content"`
	ToolCalls []model.ToolCall `json:"tool_calls,omitempty"`
}

func newSendCmd(opts *globalOptions) *cobra.Command {
	var (
		threadID     string
		modelID      string
		systemPrompt string
		syncMode     bool
	)

	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				req := model.ChatRequest{
					Message:      strings.Join(args, " "),
					ThreadID:     threadID,
					Model:        modelID,
					SystemPrompt: systemPrompt,
				}
				if req.Model == "" {
					req.Model = a.cfg.Chat.DefaultModel
				}
				if req.SystemPrompt == "" {
					req.SystemPrompt = a.cfg.Chat.SystemPrompt
				}
				if syncMode {
					return sendSync(ctx, cmd, opts, a, req)
				}
				return sendStream(ctx, cmd, opts, a, req)
			})
		},
	}
	cmd.Flags().StringVar(&threadID, "thread", "", "continue this thread (default: start a new one)")
	cmd.Flags().StringVar(&modelID, "model", "", "model to use (default: chat.default_model)")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "system prompt for this turn")
	cmd.Flags().BoolVar(&syncMode, "sync", false, "wait for the full reply instead of streaming")
	return cmd
}

func sendStream(ctx context.Context, cmd *cobra.Command, opts *globalOptions, a *app, req model.ChatRequest) error {
	out := cmd.OutOrStdout()
	// Deltas go straight to stdout unless the whole reply is needed as JSON
	live := !opts.jsonOutput

	var result sendResult
	var content strings.Builder
	for res := range a.chat.SendMessage(ctx, req) {
		if res.Err != nil {
			if live && content.Len() > 0 {
				fmt.Fprintln(out)
			}
			return res.Err
		}
		switch c := res.Value.(type) {
		case stream.Delta:
			content.WriteString(c.Text)
			if live {
				fmt.Fprint(out, c.Text)
			}
		case stream.ToolCall:
			call := model.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments}
			result.ToolCalls = append(result.ToolCalls, call)
			if live {
				fmt.Fprintln(out, DimStyle.Render(fmt.Sprintf("\n-> %s(%s)", c.Name, string(c.Arguments))))
			}
		case stream.Done:
			result.ThreadID, result.MessageID = c.ThreadID, c.MessageID
		}
	}

	if ctx.Err() != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "\n"+WarningStyle.Render("Canceled."))
		return nil
	}

	result.Content = content.String()
	if opts.jsonOutput {
		return NewJSONResponse(cmd.CommandPath(), result).Write(out)
	}
	fmt.Fprintln(out)
	if result.ThreadID != "" && req.ThreadID == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), DimStyle.Render("thread: "+result.ThreadID))
	}
	return nil
}

func sendSync(ctx context.Context, cmd *cobra.Command, opts *globalOptions, a *app, req model.ChatRequest) error {
	resp, err := a.chat.SendMessageSync(ctx, req)
	if err != nil {
		return err
	}
	return emit(cmd, opts, sendResult{
		ThreadID:  resp.ThreadID,
		MessageID: resp.Message.ID,
		Content:   resp.Message.Content,
		ToolCalls: resp.Message.ToolCalls,
	}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, displayMarkdown(resp.Message.Content))
		return err
	})
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// displayMarkdown renders markdown when stdout is a terminal and returns
// the text unchanged for piped output or when rendering fails.
func displayMarkdown(content string) string {
	if !isTerminal(os.Stdout) {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(outputWidth(), 120)),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// =============================================================================
// MODELS
// =============================================================================

func newModelsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				models, err := a.chat.ListModels(ctx)
				if err != nil {
					return err
				}
				return emit(cmd, opts, models, func(w io.Writer) error {
					if len(models) == 0 {
						_, err := fmt.Fprintln(w, DimStyle.Render("No models."))
						return err
					}
					rows := make([][]string, 0, len(models))
					for _, m := range models {
						ctxLen := "-"
						if m.ContextLength > 0 {
							ctxLen = strconv.Itoa(m.ContextLength)
						}
						rows = append(rows, []string{m.ID, m.DisplayName(), ctxLen})
					}
					_, err := fmt.Fprintln(w, renderTable([]string{"ID", "NAME", "CONTEXT"}, rows))
					return err
				})
			})
		},
	}
}
