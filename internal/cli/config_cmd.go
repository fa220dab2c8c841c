// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration file commands.
//
// Examples:
//   rigrun-chat config init                      Write ~/.rigrun-chat/config.toml
//   rigrun-chat config init --config chat.yaml   Write defaults as YAML
//   rigrun-chat config show                      Effective settings, keys redacted

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigrun-chat/internal/config"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(opts), newConfigShowCmd(opts), newConfigPathCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				p, err := config.ConfigPathTOML()
				if err != nil {
					return &ConfigError{Err: err}
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return &UsageError{Message: path + " already exists (use --force to overwrite)"}
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return &ConfigError{Err: err}
			}

			if err := config.Save(config.Default(), path); err != nil {
				return &ConfigError{Err: err}
			}
			return emit(cmd, opts, map[string]string{"path": path}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, SuccessStyle.Render("Wrote"), path)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with keys redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
			return err
		},
	}
}

func newConfigPathCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, path, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			return emit(cmd, opts, map[string]string{"path": path}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, orDash(path))
				return err
			})
		},
	}
}
