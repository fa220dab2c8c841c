// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
	jsonOutput bool

	// newApp builds the dependency graph; replaced in tests.
	newApp func(opts *globalOptions, mode appMode) (*app, error)
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &globalOptions{newApp: newApp}
	root := newRootCmd(version, opts)
	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}
	if opts.jsonOutput {
		// Scripts read the envelope from stdout.
		_ = NewJSONErrorResponse(cmd.CommandPath(), err).Write(root.OutOrStdout())
	} else {
		printError(root.ErrOrStderr(), err)
	}
	return ExitCode(err)
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{newApp: newApp}
	return newRootCmd(version, opts)
}

func newRootCmd(version string, opts *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "rigrun-chat",
		Short: "Terminal client for rigrun chat threads",
		Long: `rigrun-chat talks to a rigrun chat backend: browse threads, read
messages, send prompts with streamed replies, and manage system prompts and
terminal sessions.

Run without arguments in a terminal to start the interactive chat view.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !interactive() {
				return cmd.Help()
			}
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default ~/.rigrun-chat/config.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")

	root.AddCommand(
		newThreadsCmd(opts),
		newThreadCmd(opts),
		newMessagesCmd(opts),
		newExportCmd(opts),
		newSendCmd(opts),
		newModelsCmd(opts),
		newPromptCmd(opts),
		newTerminalCmd(opts),
		newStatusCmd(opts),
		newCacheCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// =============================================================================
// COMMAND HELPERS
// =============================================================================

// withApp opens the dependency graph for one command run.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := opts.newApp(opts, modeCommand)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

// emit prints data as a JSON envelope in --json mode, or calls human
// otherwise.
func emit(cmd *cobra.Command, opts *globalOptions, data any, human func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	if opts.jsonOutput {
		return NewJSONResponse(cmd.CommandPath(), data).Write(w)
	}
	return human(w)
}
