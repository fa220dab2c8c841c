// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jeranaias/rigrun-chat/internal/model"
)

var testTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleSequence() []Msg {
	return []Msg{
		ThreadsLoadingStarted{},
		ThreadsLoaded{Threads: []model.Thread{{ID: "t1", Title: "One"}, {ID: "t2", Title: "Two"}}, HasMore: true},
		ThreadSelected{Thread: model.Thread{ID: "t1", Title: "One"}},
		MessagesLoadingStarted{ThreadID: "t1"},
		MessagesLoaded{ThreadID: "t1", Messages: []model.Message{{ID: "m1", ThreadID: "t1", Role: model.RoleUser, Content: "hi"}}},
		ModelsLoaded{Models: []model.ModelInfo{{ID: "small"}, {ID: "large"}}},
		SendStarted{
			User:      model.Message{ID: "u1", ThreadID: "t1", Role: model.RoleUser, Content: "ping", CreatedAt: testTime},
			Assistant: model.Message{ID: "a1", ThreadID: "t1", Role: model.RoleAssistant, CreatedAt: testTime},
		},
		AssistantDelta{MessageID: "a1", Text: "po"},
		AssistantDelta{MessageID: "a1", Text: "ng"},
		AssistantToolCall{MessageID: "a1", Call: model.ToolCall{ID: "c1", Name: "search"}},
		SendCompleted{MessageID: "a1", ThreadID: "t1", ServerMessageID: "m3"},
	}
}

func fold(s ChatState, msgs []Msg) ChatState {
	for _, m := range msgs {
		s = Reduce(s, m)
	}
	return s
}

func TestReduce_Deterministic(t *testing.T) {
	first := fold(ChatState{}, sampleSequence())
	second := fold(ChatState{}, sampleSequence())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same sequence produced different states (-first +second):\n%s", diff)
	}

	if first.IsSending || first.StreamingMessageID != "" {
		t.Error("turn should be complete")
	}
	if first.SelectedModel != "small" {
		t.Errorf("SelectedModel = %q, want first model", first.SelectedModel)
	}
	last := first.Messages[len(first.Messages)-1]
	if last.ID != "m3" || last.Content != "pong" || len(last.ToolCalls) != 1 {
		t.Errorf("assistant message = %+v", last)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := fold(ChatState{}, sampleSequence()[:5])
	snapshot := fold(ChatState{}, sampleSequence()[:5])

	_ = Reduce(before, ThreadsLoaded{Threads: []model.Thread{{ID: "t3"}}, Append: true})
	_ = Reduce(before, AssistantDelta{MessageID: "m1", Text: "!!"})
	_ = Reduce(before, SendStarted{User: model.Message{ID: "u"}, Assistant: model.Message{ID: "a"}})

	if diff := cmp.Diff(snapshot, before); diff != "" {
		t.Errorf("input state was modified (-want +got):\n%s", diff)
	}
}

func TestReduce_LoadMoreAppendsWithoutDuplicates(t *testing.T) {
	s := Reduce(ChatState{}, ThreadsLoaded{Threads: []model.Thread{{ID: "t1"}, {ID: "t2"}}, HasMore: true})
	s = Reduce(s, ThreadsLoadingStarted{More: true})
	if !s.LoadingMoreThreads || s.LoadingThreads {
		t.Fatalf("loading flags = %v/%v", s.LoadingThreads, s.LoadingMoreThreads)
	}
	s = Reduce(s, ThreadsLoaded{Threads: []model.Thread{{ID: "t2"}, {ID: "t3"}}, Append: true})

	var ids []string
	for _, th := range s.Threads {
		ids = append(ids, th.ID)
	}
	if diff := cmp.Diff([]string{"t1", "t2", "t3"}, ids); diff != "" {
		t.Errorf("threads (-want +got):\n%s", diff)
	}
	if s.ThreadsOffset != 4 || s.HasMoreThreads {
		t.Errorf("offset/hasMore = %d/%v, want 4/false", s.ThreadsOffset, s.HasMoreThreads)
	}
}

func TestReduce_StaleMessagesIgnored(t *testing.T) {
	s := Reduce(ChatState{}, ThreadSelected{Thread: model.Thread{ID: "t2"}})
	s = Reduce(s, MessagesLoaded{ThreadID: "t1", Messages: []model.Message{{ID: "old"}}})
	if len(s.Messages) != 0 {
		t.Errorf("messages for an unselected thread were applied: %+v", s.Messages)
	}
}

func TestReduce_SendFailedDropsEmptyAssistant(t *testing.T) {
	s := Reduce(ChatState{}, SendStarted{
		User:      model.Message{ID: "u1", Role: model.RoleUser, Content: "hi"},
		Assistant: model.Message{ID: "a1", Role: model.RoleAssistant},
	})
	s = Reduce(s, SendFailed{MessageID: "a1", Message: "boom"})

	if len(s.Messages) != 1 || s.Messages[0].ID != "u1" {
		t.Errorf("messages = %+v, want only the user message", s.Messages)
	}
	if s.IsSending || s.SendError != "boom" {
		t.Errorf("IsSending=%v SendError=%q", s.IsSending, s.SendError)
	}

	s = Reduce(s, ErrorsCleared{})
	if s.HasError() {
		t.Error("errors should be cleared")
	}
}

func TestReduce_SelectionClearedResetsMessages(t *testing.T) {
	s := fold(ChatState{}, sampleSequence()[:5])
	s = Reduce(s, ThreadSelectionCleared{})
	if s.SelectedThread != nil || s.Messages != nil || s.LoadingMessages {
		t.Errorf("selection not cleared: %+v", s)
	}
}

func TestReduce_LateHistoryKeepsTurnInFlight(t *testing.T) {
	s := fold(ChatState{}, []Msg{
		ThreadSelected{Thread: model.Thread{ID: "t1"}},
		MessagesLoadingStarted{ThreadID: "t1"},
		SendStarted{
			User:      model.Message{ID: "u1", ThreadID: "t1", Role: model.RoleUser, Content: "ping"},
			Assistant: model.Message{ID: "a1", ThreadID: "t1", Role: model.RoleAssistant},
		},
		AssistantDelta{MessageID: "a1", Text: "po"},
		MessagesLoaded{ThreadID: "t1", Messages: []model.Message{
			{ID: "m1", ThreadID: "t1", Role: model.RoleUser, Content: "earlier"},
		}},
		AssistantDelta{MessageID: "a1", Text: "ng"},
	})

	want := []model.Message{
		{ID: "m1", ThreadID: "t1", Role: model.RoleUser, Content: "earlier"},
		{ID: "u1", ThreadID: "t1", Role: model.RoleUser, Content: "ping"},
		{ID: "a1", ThreadID: "t1", Role: model.RoleAssistant, Content: "pong"},
	}
	if diff := cmp.Diff(want, s.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	if !s.IsSending || s.StreamingMessageID != "a1" || s.LoadingMessages {
		t.Errorf("IsSending=%v StreamingMessageID=%q LoadingMessages=%v", s.IsSending, s.StreamingMessageID, s.LoadingMessages)
	}
}

func TestReduce_HistoryAlreadyHoldingTurnIsNotDuplicated(t *testing.T) {
	s := Reduce(ChatState{}, ThreadSelected{Thread: model.Thread{ID: "t1"}})
	s = Reduce(s, SendStarted{
		User:      model.Message{ID: "u1", ThreadID: "t1", Role: model.RoleUser, Content: "ping"},
		Assistant: model.Message{ID: "a1", ThreadID: "t1", Role: model.RoleAssistant},
	})
	s = Reduce(s, MessagesLoaded{ThreadID: "t1", Messages: []model.Message{
		{ID: "u1", ThreadID: "t1", Role: model.RoleUser, Content: "ping"},
	}})

	if got := len(s.Messages); got != 2 {
		t.Fatalf("len(messages) = %d, want 2: %+v", got, s.Messages)
	}
	if s.Messages[1].ID != "a1" {
		t.Errorf("streaming message lost: %+v", s.Messages)
	}
}
