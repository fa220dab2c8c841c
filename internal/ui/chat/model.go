// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-chat/internal/store"
	"github.com/jeranaias/rigrun-chat/internal/ui/styles"
)

// noticeDuration is how long a transient notice stays visible.
const noticeDuration = 5 * time.Second

// Store is the part of store.Store the view uses.
type Store interface {
	Dispatch(in store.Intent)
	State() store.ChatState
	Updates() <-chan store.ChatState
	Effects() <-chan store.Effect
}

// Options configures a Model.
type Options struct {
	Store  Store
	Theme  *styles.Theme
	Logger *zap.Logger
	// Title is shown at the left of the header.
	Title string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

type focus int

const (
	focusInput focus = iota
	focusThreads
)

type notice struct {
	text  string
	level styles.Level
	seq   int
}

// rendered caches a markdown rendering of one message.
type rendered struct {
	content string
	width   int
	out     string
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	store Store
	theme *styles.Theme
	log   *zap.Logger
	keys  KeyMap
	title string

	// Latest state from the store
	state store.ChatState

	// Dimensions
	width  int
	height int
	ready  bool

	focus  focus
	cursor int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model

	renderer *glamour.TermRenderer
	cache    map[string]rendered

	notice    *notice
	noticeSeq int
	closed    bool
}

// New creates the chat view.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	title := opts.Title
	if title == "" {
		title = "rigrun-chat"
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message (Enter to send, Tab for threads)"
	ti.Prompt = "> "
	ti.CharLimit = 8192
	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Spinner))

	m := Model{
		store:    opts.Store,
		theme:    theme,
		log:      log,
		keys:     DefaultKeyMap(),
		title:    title,
		viewport: viewport.New(0, 0),
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		cache:    make(map[string]rendered),
	}
	if opts.Store != nil {
		m.state = opts.Store.State()
	}
	return m
}

// Init starts listening to the store and loads the initial data.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		listenUpdates(m.store.Updates()),
		listenEffects(m.store.Effects()),
		m.dispatch(store.LoadThreads{}),
		m.dispatch(store.LoadModels{}),
	)
}

// =============================================================================
// STORE SUBSCRIPTION
// =============================================================================

// stateMsg carries a state published by the store.
type stateMsg struct {
	state store.ChatState
}

// effectMsg carries a one-shot store effect.
type effectMsg struct {
	effect store.Effect
}

// storeClosedMsg reports that the store channels were closed.
type storeClosedMsg struct{}

// noticeExpiredMsg clears the notice with the same sequence number.
type noticeExpiredMsg struct {
	seq int
}

func listenUpdates(updates <-chan store.ChatState) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return storeClosedMsg{}
		}
		return stateMsg{state: st}
	}
}

func listenEffects(effects <-chan store.Effect) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-effects
		if !ok {
			return storeClosedMsg{}
		}
		return effectMsg{effect: e}
	}
}

// dispatch returns a command that submits an intent. Dispatch never blocks,
// so the command finishes immediately with no message.
func (m Model) dispatch(in store.Intent) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		s.Dispatch(in)
		return nil
	}
}

// State returns the last state the view rendered.
func (m Model) State() store.ChatState {
	return m.state
}
