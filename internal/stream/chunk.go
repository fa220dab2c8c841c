// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Chunk is one unit of an in-progress chat response.
type Chunk interface {
	chunk()
}

// Delta carries incremental assistant text.
type Delta struct {
	Text string
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ErrorChunk is an error reported by the server inside the stream.
type ErrorChunk struct {
	Message string
}

// Done marks the end of the turn and names the stored thread and message,
// when the server reports them.
type Done struct {
	ThreadID  string
	MessageID string
}

func (Delta) chunk()      {}
func (ToolCall) chunk()   {}
func (ErrorChunk) chunk() {}
func (Done) chunk()       {}

// Chunk type discriminators on the wire.
const (
	TypeDelta    = "delta"
	TypeToolCall = "tool_call"
	TypeError    = "error"
	TypeDone     = "done"
)

var errUnknownType = errors.New("unknown chunk type")

// wireChunk is the JSON payload of one data line.
type wireChunk struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Content   string          `json:"content"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	ThreadID  string          `json:"thread_id"`
	MessageID string          `json:"message_id"`
}

// Decode parses one JSON payload into a Chunk.
func Decode(payload []byte) (Chunk, error) {
	var w wireChunk
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case TypeDelta:
		text := w.Text
		if text == "" {
			text = w.Content
		}
		return Delta{Text: text}, nil
	case TypeToolCall:
		if w.Name == "" {
			return nil, fmt.Errorf("tool_call without name")
		}
		return ToolCall{ID: w.ID, Name: w.Name, Arguments: w.Arguments}, nil
	case TypeError:
		msg := w.Message
		if msg == "" {
			msg = w.Error
		}
		if msg == "" {
			msg = "unknown stream error"
		}
		return ErrorChunk{Message: msg}, nil
	case TypeDone:
		return Done{ThreadID: w.ThreadID, MessageID: w.MessageID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, w.Type)
	}
}
