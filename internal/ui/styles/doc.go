// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the rigrun-chat TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - Assistant messages and selections
  - Cyan - Brand color, user messages and focus
  - Emerald - Success and connection indicators
  - Amber - Warnings
  - Rose - Errors

# Theme (theme.go)

Theme bundles the lipgloss styles used by the chat view: the thread
sidebar, the message transcript, the input line, the status bar and
transient notices. Create one with NewTheme and share it; styles are
values and safe to copy.

# Usage

	theme := styles.NewTheme()
	fmt.Println(theme.Header.Render("rigrun-chat"))
	fmt.Println(theme.Notice(styles.LevelError).Render("Request failed"))
*/
package styles
