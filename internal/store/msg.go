// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/model"
)

// =============================================================================
// TRANSITION MESSAGES
// =============================================================================

// Msg is a state transition. Msgs carry every id and timestamp the reducer
// needs.
type Msg interface {
	msg()
}

// ThreadsLoadingStarted marks a thread page load as in progress.
type ThreadsLoadingStarted struct {
	More bool
}

// ThreadsLoaded carries a page of threads. Append adds to the current list
// instead of replacing it.
type ThreadsLoaded struct {
	Threads []model.Thread
	Append  bool
	HasMore bool
}

// ThreadsLoadFailed reports a failed page load.
type ThreadsLoadFailed struct {
	Message string
	More    bool
}

// ThreadSelected makes Thread the selection.
type ThreadSelected struct {
	Thread model.Thread
}

// ThreadSelectFailed reports that a thread could not be resolved.
type ThreadSelectFailed struct {
	ThreadID string
	Message  string
}

// ThreadSelectionCleared removes the selection.
type ThreadSelectionCleared struct{}

// MessagesLoadingStarted marks a message load for ThreadID as in progress.
type MessagesLoadingStarted struct {
	ThreadID string
}

// MessagesLoaded carries the messages of ThreadID.
type MessagesLoaded struct {
	ThreadID string
	Messages []model.Message
}

// MessagesLoadFailed reports a failed message load.
type MessagesLoadFailed struct {
	ThreadID string
	Message  string
}

// ModelsLoadingStarted marks a model list load as in progress.
type ModelsLoadingStarted struct{}

// ModelsLoaded carries the model list.
type ModelsLoaded struct {
	Models []model.ModelInfo
}

// ModelsLoadFailed reports a failed model list load.
type ModelsLoadFailed struct {
	Message string
}

// ModelSelected sets the model for new turns.
type ModelSelected struct {
	ID string
}

// SendStarted appends the user message and the empty assistant message that
// will receive the streamed answer.
type SendStarted struct {
	User      model.Message
	Assistant model.Message
}

// AssistantDelta appends Text to the streaming assistant message.
type AssistantDelta struct {
	MessageID string
	Text      string
}

// AssistantToolCall records a tool call on the streaming assistant message.
type AssistantToolCall struct {
	MessageID string
	Call      model.ToolCall
}

// SendCompleted ends a successful turn. ThreadID and ServerMessageID come
// from the stream's done chunk and may be empty.
type SendCompleted struct {
	MessageID       string
	ThreadID        string
	ServerMessageID string
}

// SendFailed ends a turn with an error.
type SendFailed struct {
	MessageID string
	Message   string
}

// SendCanceled ends a turn the user aborted.
type SendCanceled struct {
	MessageID string
}

// ErrorsCleared clears every resource error.
type ErrorsCleared struct{}

func (ThreadsLoadingStarted) msg()  {}
func (ThreadsLoaded) msg()          {}
func (ThreadsLoadFailed) msg()      {}
func (ThreadSelected) msg()         {}
func (ThreadSelectFailed) msg()     {}
func (ThreadSelectionCleared) msg() {}
func (MessagesLoadingStarted) msg() {}
func (MessagesLoaded) msg()         {}
func (MessagesLoadFailed) msg()     {}
func (ModelsLoadingStarted) msg()   {}
func (ModelsLoaded) msg()           {}
func (ModelsLoadFailed) msg()       {}
func (ModelSelected) msg()          {}
func (SendStarted) msg()            {}
func (AssistantDelta) msg()         {}
func (AssistantToolCall) msg()      {}
func (SendCompleted) msg()          {}
func (SendFailed) msg()             {}
func (SendCanceled) msg()           {}
func (ErrorsCleared) msg()          {}

// =============================================================================
// EFFECTS
// =============================================================================

// Effect is a one-shot notification outside of ChatState.
type Effect interface {
	effect()
}

// ShowError asks the UI to show a transient error.
type ShowError struct {
	Message  string
	Severity apierr.Severity
}

// OpenThread asks the UI to navigate to a thread the server created.
type OpenThread struct {
	ThreadID string
}

func (ShowError) effect()  {}
func (OpenThread) effect() {}
