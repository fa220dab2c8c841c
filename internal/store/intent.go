// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

// Intent is a user action submitted to the Store.
type Intent interface {
	intent()
}

// LoadThreads loads the first page of threads.
type LoadThreads struct{}

// RefreshThreads drops cached pages and reloads the first page.
type RefreshThreads struct{}

// LoadMoreThreads loads the page after the ones already shown.
type LoadMoreThreads struct{}

// SelectThread selects a thread, fetching it if it is not listed, and loads
// its messages.
type SelectThread struct {
	ID string
}

// ClearThreadSelection deselects the current thread.
type ClearThreadSelection struct{}

// LoadMessages loads the messages of ThreadID, or of the selected thread
// when ThreadID is empty.
type LoadMessages struct {
	ThreadID string
}

// LoadModels loads the available models.
type LoadModels struct{}

// SelectModel sets the model used for new turns.
type SelectModel struct {
	ID string
}

// SendMessage sends a chat turn on the selected thread, or starts a new
// thread when none is selected.
type SendMessage struct {
	Text string
}

// CancelSend aborts the turn in flight.
type CancelSend struct{}

// ClearErrors clears every resource error.
type ClearErrors struct{}

func (LoadThreads) intent()          {}
func (RefreshThreads) intent()       {}
func (LoadMoreThreads) intent()      {}
func (SelectThread) intent()         {}
func (ClearThreadSelection) intent() {}
func (LoadMessages) intent()         {}
func (LoadModels) intent()           {}
func (SelectModel) intent()          {}
func (SendMessage) intent()          {}
func (CancelSend) intent()           {}
func (ClearErrors) intent()          {}
