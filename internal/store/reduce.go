// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "github.com/jeranaias/rigrun-chat/internal/model"

// Reduce returns the state after applying m to s. It has no side effects
// and never modifies the slices of s.
func Reduce(s ChatState, m Msg) ChatState {
	switch m := m.(type) {

	// Threads
	case ThreadsLoadingStarted:
		if m.More {
			s.LoadingMoreThreads = true
		} else {
			s.LoadingThreads = true
		}
		s.ThreadsError = ""

	case ThreadsLoaded:
		if m.Append {
			s.Threads = appendThreads(s.Threads, m.Threads)
			s.ThreadsOffset += len(m.Threads)
		} else {
			s.Threads = append([]model.Thread(nil), m.Threads...)
			s.ThreadsOffset = len(m.Threads)
		}
		s.HasMoreThreads = m.HasMore
		s.LoadingThreads = false
		s.LoadingMoreThreads = false
		s.ThreadsError = ""
		if id := s.SelectedThreadID(); id != "" {
			if t, ok := findThread(s.Threads, id); ok {
				s.SelectedThread = &t
			}
		}

	case ThreadsLoadFailed:
		if m.More {
			s.LoadingMoreThreads = false
		} else {
			s.LoadingThreads = false
		}
		s.ThreadsError = m.Message

	case ThreadSelected:
		t := m.Thread
		if s.SelectedThreadID() != t.ID {
			s.Messages = nil
			s.MessagesError = ""
		}
		s.SelectedThread = &t

	case ThreadSelectFailed:
		s.LoadingMessages = false
		s.MessagesError = m.Message

	case ThreadSelectionCleared:
		s.SelectedThread = nil
		s.Messages = nil
		s.LoadingMessages = false
		s.MessagesError = ""

	// Messages
	case MessagesLoadingStarted:
		if m.ThreadID != s.SelectedThreadID() {
			return s
		}
		s.LoadingMessages = true
		s.MessagesError = ""

	case MessagesLoaded:
		if m.ThreadID != s.SelectedThreadID() {
			return s
		}
		s.Messages = mergeInFlight(m.Messages, s.Messages, s.StreamingMessageID)
		s.LoadingMessages = false
		s.MessagesError = ""

	case MessagesLoadFailed:
		if m.ThreadID != s.SelectedThreadID() {
			return s
		}
		s.LoadingMessages = false
		s.MessagesError = m.Message

	// Models
	case ModelsLoadingStarted:
		s.LoadingModels = true
		s.ModelsError = ""

	case ModelsLoaded:
		s.Models = append([]model.ModelInfo(nil), m.Models...)
		s.LoadingModels = false
		s.ModelsError = ""
		if s.SelectedModel == "" && len(s.Models) > 0 {
			s.SelectedModel = s.Models[0].ID
		}

	case ModelsLoadFailed:
		s.LoadingModels = false
		s.ModelsError = m.Message

	case ModelSelected:
		s.SelectedModel = m.ID

	// Sending
	case SendStarted:
		msgs := make([]model.Message, 0, len(s.Messages)+2)
		msgs = append(msgs, s.Messages...)
		s.Messages = append(msgs, m.User, m.Assistant)
		s.IsSending = true
		s.StreamingMessageID = m.Assistant.ID
		s.SendError = ""

	case AssistantDelta:
		s.Messages = updateMessage(s.Messages, m.MessageID, func(msg *model.Message) {
			msg.Content += m.Text
		})

	case AssistantToolCall:
		s.Messages = updateMessage(s.Messages, m.MessageID, func(msg *model.Message) {
			calls := make([]model.ToolCall, 0, len(msg.ToolCalls)+1)
			msg.ToolCalls = append(append(calls, msg.ToolCalls...), m.Call)
		})

	case SendCompleted:
		s.Messages = completeTurn(s.Messages, m)
		s.IsSending = false
		s.StreamingMessageID = ""

	case SendFailed:
		s.Messages = dropEmpty(s.Messages, m.MessageID)
		s.IsSending = false
		s.StreamingMessageID = ""
		s.SendError = m.Message

	case SendCanceled:
		s.Messages = dropEmpty(s.Messages, m.MessageID)
		s.IsSending = false
		s.StreamingMessageID = ""

	case ErrorsCleared:
		s.ThreadsError = ""
		s.MessagesError = ""
		s.ModelsError = ""
		s.SendError = ""
	}
	return s
}

// appendThreads returns old followed by the threads of page not already in old.
func appendThreads(old, page []model.Thread) []model.Thread {
	seen := make(map[string]struct{}, len(old))
	for _, t := range old {
		seen[t.ID] = struct{}{}
	}
	out := make([]model.Thread, 0, len(old)+len(page))
	out = append(out, old...)
	for _, t := range page {
		if _, dup := seen[t.ID]; !dup {
			out = append(out, t)
		}
	}
	return out
}

// updateMessage returns a copy of msgs with fn applied to the message id.
// If id is absent msgs is returned unchanged.
func updateMessage(msgs []model.Message, id string, fn func(*model.Message)) []model.Message {
	for i := range msgs {
		if msgs[i].ID != id {
			continue
		}
		out := append([]model.Message(nil), msgs...)
		fn(&out[i])
		return out
	}
	return msgs
}

// mergeInFlight returns loaded followed by the turn still being streamed in
// local: the user message and the assistant message streamingID. With no
// turn in flight it returns a copy of loaded.
func mergeInFlight(loaded, local []model.Message, streamingID string) []model.Message {
	out := append([]model.Message(nil), loaded...)
	if streamingID == "" {
		return out
	}
	start := -1
	for i, msg := range local {
		if msg.ID == streamingID {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}
	if start > 0 && local[start-1].Role == model.RoleUser {
		start--
	}
	seen := make(map[string]struct{}, len(out))
	for _, msg := range out {
		seen[msg.ID] = struct{}{}
	}
	for _, msg := range local[start:] {
		if _, dup := seen[msg.ID]; !dup {
			out = append(out, msg)
		}
	}
	return out
}

func completeTurn(msgs []model.Message, m SendCompleted) []model.Message {
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		if out[i].ID == m.MessageID && m.ServerMessageID != "" {
			out[i].ID = m.ServerMessageID
		}
		if out[i].ThreadID == "" && m.ThreadID != "" {
			out[i].ThreadID = m.ThreadID
		}
	}
	return out
}

// dropEmpty removes message id if it never received content.
func dropEmpty(msgs []model.Message, id string) []model.Message {
	for i, msg := range msgs {
		if msg.ID != id {
			continue
		}
		if msg.Content != "" || len(msg.ToolCalls) > 0 {
			return msgs
		}
		out := make([]model.Message, 0, len(msgs)-1)
		out = append(out, msgs[:i]...)
		return append(out, msgs[i+1:]...)
	}
	return msgs
}
