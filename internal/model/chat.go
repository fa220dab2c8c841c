// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Message      string `json:"message"`
	ThreadID     string `json:"thread_id,omitempty"`
	Model        string `json:"model,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	Stream       bool   `json:"stream"`
}

// ChatResponse is the non-streamed answer to a chat turn.
type ChatResponse struct {
	ThreadID string  `json:"thread_id"`
	Message  Message `json:"message"`
}

// ModelInfo describes a model offered by the backend.
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length,omitempty"`
}

// DisplayName returns the name, falling back to the ID.
func (m ModelInfo) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

type modelList struct {
	Models []ModelInfo `json:"models"`
}

// DecodeModels parses a model list body.
func DecodeModels(data []byte) ([]ModelInfo, error) {
	var list modelList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	if list.Models == nil {
		list.Models = []ModelInfo{}
	}
	return list.Models, nil
}
