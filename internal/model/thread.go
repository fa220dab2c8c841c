// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Thread is a conversation thread.
type Thread struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayTitle returns the title, or a placeholder for untitled threads.
func (t Thread) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return "Untitled thread"
}

type threadList struct {
	Threads []Thread `json:"threads"`
}

// DecodeThreads parses a thread list body.
func DecodeThreads(data []byte) ([]Thread, error) {
	var list threadList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	if list.Threads == nil {
		list.Threads = []Thread{}
	}
	return list.Threads, nil
}

// CreateThreadRequest is the body of POST /v1/threads.
type CreateThreadRequest struct {
	Title string `json:"title"`
}
