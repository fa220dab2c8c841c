// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/store"
	"github.com/jeranaias/rigrun-chat/internal/ui/styles"
)

// Layout constants
const (
	headerHeight  = 1
	footerHeight  = 3 // notice, input, status
	minSidebar    = 20
	maxSidebar    = 36
	narrowWidth   = 60
	sidebarBorder = 2
)

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case stateMsg:
		m.applyState(msg.state)
		return m, listenUpdates(m.store.Updates())

	case effectMsg:
		cmd := m.handleEffect(msg.effect)
		return m, tea.Batch(cmd, listenEffects(m.store.Effects()))

	case storeClosedMsg:
		m.closed = true
		return m, nil

	case noticeExpiredMsg:
		if m.notice != nil && m.notice.seq == msg.seq {
			m.notice = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.IsSending || m.state.LoadingMessages {
			m.refreshViewport()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// STATE AND EFFECTS
// =============================================================================

func (m *Model) applyState(st store.ChatState) {
	m.state = st
	if m.cursor >= len(st.Threads) {
		m.cursor = max(len(st.Threads)-1, 0)
	}
	m.refreshViewport()
}

func (m *Model) handleEffect(e store.Effect) tea.Cmd {
	switch e := e.(type) {
	case store.ShowError:
		return m.showNotice(e.Message, levelFor(e.Severity))
	case store.OpenThread:
		m.store.Dispatch(store.SelectThread{ID: e.ThreadID})
		m.store.Dispatch(store.LoadThreads{})
	default:
		m.log.Debug("unhandled effect", zap.Any("effect", e))
	}
	return nil
}

func (m *Model) showNotice(text string, level styles.Level) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = &notice{text: text, level: level, seq: seq}
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func levelFor(sev apierr.Severity) styles.Level {
	switch sev {
	case apierr.SeverityInfo:
		return styles.LevelInfo
	case apierr.SeverityWarning:
		return styles.LevelWarning
	default:
		return styles.LevelError
	}
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.state.IsSending:
			m.store.Dispatch(store.CancelSend{})
		case m.notice != nil:
			m.notice = nil
		case m.state.HasError():
			m.store.Dispatch(store.ClearErrors{})
		case m.focus == focusThreads:
			m.setFocus(focusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.SwitchFocus):
		if m.focus == focusInput {
			m.setFocus(focusThreads)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.NewThread):
		m.store.Dispatch(store.ClearThreadSelection{})
		m.setFocus(focusInput)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.store.Dispatch(store.RefreshThreads{})
		return m, nil

	case key.Matches(msg, m.keys.NextModel):
		return m, m.nextModel()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusThreads {
		return m.handleThreadKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m, m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleThreadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	threads := m.state.Threads
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(threads)-1 {
			m.cursor++
		} else if m.state.HasMoreThreads {
			m.store.Dispatch(store.LoadMoreThreads{})
		}
	case key.Matches(msg, m.keys.Submit):
		if m.cursor < len(threads) {
			m.store.Dispatch(store.SelectThread{ID: threads[m.cursor].ID})
			m.setFocus(focusInput)
		}
	}
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if m.state.IsSending {
		return m.showNotice("Wait for the reply to finish or press Esc to cancel", styles.LevelInfo)
	}
	m.store.Dispatch(store.SendMessage{Text: text})
	m.input.Reset()
	m.viewport.GotoBottom()
	return nil
}

func (m *Model) nextModel() tea.Cmd {
	models := m.state.Models
	if len(models) == 0 {
		return m.showNotice("No models available", styles.LevelWarning)
	}
	next := 0
	for i, info := range models {
		if info.ID == m.state.SelectedModel {
			next = (i + 1) % len(models)
			break
		}
	}
	m.store.Dispatch(store.SelectModel{ID: models[next].ID})
	return m.showNotice("Model: "+models[next].DisplayName(), styles.LevelInfo)
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
	if sel := m.state.SelectedThreadID(); sel != "" {
		for i, t := range m.state.Threads {
			if t.ID == sel {
				m.cursor = i
				break
			}
		}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = width > 0 && height > 0

	vpWidth := width - m.sidebarWidth()
	vpHeight := max(m.bodyHeight(), 1)
	m.viewport.Width = max(vpWidth, 1)
	m.viewport.Height = vpHeight
	m.input.Width = max(width-len(m.input.Prompt)-1, 1)
	m.help.Width = width

	wrap := max(m.viewport.Width-2, 20)
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
	if err != nil {
		m.log.Debug("markdown renderer unavailable", zap.Error(err))
		r = nil
	}
	m.renderer = r
	clear(m.cache)
	m.refreshViewport()
}

// sidebarWidth is the outer width of the thread sidebar, or 0 when the
// terminal is too narrow to show it beside the transcript.
func (m Model) sidebarWidth() int {
	if m.width < narrowWidth {
		return 0
	}
	return min(max(m.width/4, minSidebar), maxSidebar)
}

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if m.help.ShowAll {
		h -= len(m.keys.FullHelp()[0]) - 1
	}
	return h
}
