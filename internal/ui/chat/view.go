// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/ui/styles"
	"github.com/jeranaias/rigrun-chat/internal/util"
)

// View renders the chat view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	body := m.viewport.View()
	switch {
	case m.sidebarWidth() > 0:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(m.sidebarWidth()), body)
	case m.focus == focusThreads:
		body = m.renderSidebar(m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderNotice(),
		m.renderInput(),
		m.help.View(m.keys),
	)
}

// =============================================================================
// HEADER AND FOOTER
// =============================================================================

func (m Model) renderHeader() string {
	thread := "New conversation"
	if t := m.state.SelectedThread; t != nil {
		thread = util.SingleLine(t.DisplayTitle())
	}
	left := m.title + " | " + thread

	right := "no model"
	if m.state.SelectedModel != "" {
		right = m.state.SelectedModel
		for _, info := range m.state.Models {
			if info.ID == m.state.SelectedModel {
				right = info.DisplayName()
				break
			}
		}
	}
	if m.closed {
		right = "disconnected"
	}

	inner := max(m.width-2, 0)
	gap := inner - util.Width(left) - util.Width(right)
	if gap < 1 {
		left = util.Truncate(left, max(inner-util.Width(right)-1, 0))
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderNotice() string {
	switch {
	case m.notice != nil:
		line := styles.Indicator(m.notice.level) + " " + util.SingleLine(m.notice.text)
		return m.theme.Notice(m.notice.level).Render(util.Truncate(line, m.width))
	case m.state.SendError != "":
		line := styles.Indicator(styles.LevelError) + " " + util.SingleLine(m.state.SendError)
		return m.theme.Notice(styles.LevelError).Render(util.Truncate(line, m.width))
	}
	return ""
}

func (m Model) renderInput() string {
	if m.state.IsSending {
		return m.spinner.View() + " " + m.theme.Muted.Render("Receiving reply... (Esc to cancel)")
	}
	return m.input.View()
}

// =============================================================================
// THREAD SIDEBAR
// =============================================================================

func (m Model) renderSidebar(outer int) string {
	height := max(m.bodyHeight()-sidebarBorder, 1)
	inner := max(outer-sidebarBorder-2, 1)

	lines := []string{m.theme.SidebarTitle.Render("Threads")}
	rows := height - 2

	switch {
	case m.state.LoadingThreads && len(m.state.Threads) == 0:
		lines = append(lines, m.spinner.View()+" loading")
	case m.state.ThreadsError != "" && len(m.state.Threads) == 0:
		lines = append(lines, m.theme.Notice(styles.LevelError).Render(util.Truncate(m.state.ThreadsError, inner)))
	case len(m.state.Threads) == 0:
		lines = append(lines, m.theme.Muted.Render("No threads yet"))
	default:
		start := 0
		if m.cursor >= rows {
			start = m.cursor - rows + 1
		}
		end := min(start+rows, len(m.state.Threads))
		selected := m.state.SelectedThreadID()
		for i := start; i < end; i++ {
			lines = append(lines, m.renderThread(m.state.Threads[i], i, selected, inner))
		}
	}

	switch {
	case m.state.LoadingMoreThreads:
		lines = append(lines, m.theme.Muted.Render("loading more..."))
	case m.state.HasMoreThreads:
		lines = append(lines, m.theme.Muted.Render("more below"))
	}

	style := m.theme.Sidebar
	if m.focus == focusThreads {
		style = m.theme.SidebarFocused
	}
	return style.Width(outer - sidebarBorder).Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderThread(t model.Thread, index int, selected string, width int) string {
	marker := "  "
	if t.ID == selected {
		marker = "* "
	}
	title := marker + util.Truncate(util.SingleLine(t.DisplayTitle()), width-2)

	switch {
	case m.focus == focusThreads && index == m.cursor:
		return m.theme.ThreadCursor.Render(title)
	case t.ID == selected:
		return m.theme.ThreadActive.Render(title)
	default:
		return m.theme.ThreadItem.Render(title)
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport re-renders the transcript, following the bottom when the
// view was already there.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	follow := m.viewport.AtBottom() || m.state.IsSending
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	width := max(m.viewport.Width-2, 1)
	st := m.state

	if st.LoadingMessages && len(st.Messages) == 0 {
		return m.spinner.View() + " Loading messages..."
	}
	if st.MessagesError != "" && len(st.Messages) == 0 {
		return m.theme.Notice(styles.LevelError).Render(st.MessagesError)
	}
	if len(st.Messages) == 0 {
		return m.theme.Muted.Render("Select a thread with Tab, or type a message to start a new conversation.")
	}

	var b strings.Builder
	for i, msg := range st.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg, width))
	}
	return b.String()
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	header := m.roleStyle(msg.Role).Render(msg.Role.DisplayName())
	if !msg.CreatedAt.IsZero() {
		header += " " + m.theme.Timestamp.Render(msg.CreatedAt.Local().Format("15:04"))
	}

	streaming := msg.ID == m.state.StreamingMessageID
	var body string
	switch {
	case streaming && msg.Content == "":
		body = m.spinner.View()
	case msg.Role == model.RoleAssistant && !streaming:
		body = m.markdown(msg, width)
	default:
		body = m.theme.MessageBody.Width(width).Render(msg.Content)
	}

	parts := []string{header, body}
	for _, call := range msg.ToolCalls {
		args := util.Truncate(util.SingleLine(string(call.Arguments)), max(width-len(call.Name)-4, 0))
		parts = append(parts, m.theme.ToolCall.Render(fmt.Sprintf("-> %s(%s)", call.Name, args)))
	}
	return strings.Join(parts, "\n")
}

// markdown renders an assistant message, reusing the last rendering while
// neither the content nor the width changed.
func (m *Model) markdown(msg model.Message, width int) string {
	if m.renderer == nil {
		return m.theme.MessageBody.Width(width).Render(msg.Content)
	}
	if c, ok := m.cache[msg.ID]; ok && c.content == msg.Content && c.width == width {
		return c.out
	}
	out, err := m.renderer.Render(msg.Content)
	if err != nil {
		return m.theme.MessageBody.Width(width).Render(msg.Content)
	}
	out = strings.Trim(out, "\n")
	m.cache[msg.ID] = rendered{content: msg.Content, width: width, out: out}
	return out
}

func (m Model) roleStyle(role model.Role) lipgloss.Style {
	switch role {
	case model.RoleUser:
		return m.theme.UserLabel
	case model.RoleAssistant:
		return m.theme.AssistantLabel
	case model.RoleTool:
		return m.theme.ToolLabel
	default:
		return m.theme.SystemLabel
	}
}
