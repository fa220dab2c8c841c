// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// SystemPrompt is a named system prompt stored on the server.
type SystemPrompt struct {
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// UpdateSystemPromptRequest is the body of PUT /v1/system-prompts/{name}.
type UpdateSystemPromptRequest struct {
	Content string `json:"content"`
}

// TerminalSession is a session on the terminal service.
type TerminalSession struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Shell     string    `json:"shell,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionList struct {
	Sessions []TerminalSession `json:"sessions"`
}

// DecodeTerminalSessions parses a terminal session list body.
func DecodeTerminalSessions(data []byte) ([]TerminalSession, error) {
	var list sessionList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	if list.Sessions == nil {
		list.Sessions = []TerminalSession{}
	}
	return list.Sessions, nil
}
