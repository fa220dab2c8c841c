// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a thread and its messages to a file format.
//
// # Key Types
//
//   - Transcript: A thread together with its messages
//   - Exporter: Format-specific renderer
//   - Options: Export configuration options
//
// # Supported Formats
//
//   - Markdown: YAML frontmatter followed by one section per message
//   - JSON: The transcript as an indented JSON document
//
// # Usage
//
//	exp, err := export.ForFormat("md", export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	data, err := exp.Export(export.Transcript{Thread: t, Messages: msgs})
package export
