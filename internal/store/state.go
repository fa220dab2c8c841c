// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "github.com/jeranaias/rigrun-chat/internal/model"

// ChatState is the UI-facing state. The zero value is the initial state.
// Slices are never modified in place; a new state gets new slices.
type ChatState struct {
	Threads        []model.Thread
	ThreadsOffset  int
	HasMoreThreads bool
	SelectedThread *model.Thread

	Messages []model.Message

	Models        []model.ModelInfo
	SelectedModel string

	LoadingThreads     bool
	LoadingMoreThreads bool
	LoadingMessages    bool
	LoadingModels      bool

	ThreadsError  string
	MessagesError string
	ModelsError   string
	SendError     string

	IsSending bool
	// StreamingMessageID is the assistant message receiving deltas.
	StreamingMessageID string
}

// SelectedThreadID returns the id of the selected thread, or "".
func (s ChatState) SelectedThreadID() string {
	if s.SelectedThread == nil {
		return ""
	}
	return s.SelectedThread.ID
}

// HasError reports whether any resource carries an error.
func (s ChatState) HasError() bool {
	return s.ThreadsError != "" || s.MessagesError != "" || s.ModelsError != "" || s.SendError != ""
}

func findThread(threads []model.Thread, id string) (model.Thread, bool) {
	for _, t := range threads {
		if t.ID == id {
			return t, true
		}
	}
	return model.Thread{}, false
}
