// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Level selects the notice style.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Theme holds the styled components of the chat view.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style

	// ==========================================================================
	// THREAD SIDEBAR
	// ==========================================================================

	Sidebar        lipgloss.Style
	SidebarFocused lipgloss.Style
	SidebarTitle   lipgloss.Style
	ThreadItem     lipgloss.Style
	ThreadActive   lipgloss.Style
	ThreadCursor   lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	ToolLabel      lipgloss.Style
	MessageBody    lipgloss.Style
	Timestamp      lipgloss.Style
	ToolCall       lipgloss.Style
	Muted          lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputPrompt lipgloss.Style
	InputText   lipgloss.Style
	Spinner     lipgloss.Style

	notices [3]lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		ColorProfile: lipgloss.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted)

	t.Sidebar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarFocused = t.Sidebar.BorderForeground(Cyan)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.ThreadItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ThreadActive = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.ThreadCursor = lipgloss.NewStyle().Background(SelectionBg).Foreground(TextPrimary)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.SystemLabel = lipgloss.NewStyle().Bold(true).Foreground(Amber)
	t.ToolLabel = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.MessageBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.ToolCall = lipgloss.NewStyle().Foreground(Emerald).Italic(true)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.InputText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	t.notices[LevelInfo] = lipgloss.NewStyle().Foreground(Blue)
	t.notices[LevelWarning] = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.notices[LevelError] = lipgloss.NewStyle().Foreground(Rose).Bold(true)
}

// Notice returns the style for a notice of the given level. Unknown levels
// use the error style.
func (t *Theme) Notice(level Level) lipgloss.Style {
	if level < LevelInfo || level > LevelError {
		level = LevelError
	}
	return t.notices[level]
}

// Indicator returns the ASCII marker for a notice level.
func Indicator(level Level) string {
	switch level {
	case LevelInfo:
		return StatusIndicators.Info
	case LevelWarning:
		return StatusIndicators.Warning
	default:
		return StatusIndicators.Error
	}
}
