// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLists_MissingFieldIsEmpty(t *testing.T) {
	threads, err := DecodeThreads([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)

	msgs, err := DecodeMessages([]byte(`{"messages":null}`))
	require.NoError(t, err)
	assert.NotNil(t, msgs)

	models, err := DecodeModels([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, models)

	sessions, err := DecodeTerminalSessions([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, sessions)
}

func TestDecodeLists_InvalidJSON(t *testing.T) {
	_, err := DecodeThreads([]byte(`[`))
	assert.Error(t, err)
	_, err = DecodeMessages([]byte(`"nope"`))
	assert.Error(t, err)
}

func TestDecodeMessages(t *testing.T) {
	body := `{"messages":[{"id":"m1","thread_id":"t1","role":"assistant","content":"hi",
		"tool_calls":[{"id":"c1","name":"search","arguments":{"q":"go"}}],
		"created_at":"2025-01-02T03:04:05Z"}]}`

	msgs, err := DecodeMessages([]byte(body))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.Equal(t, RoleAssistant, m.Role)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), m.CreatedAt)
	require.Len(t, m.ToolCalls, 1)
	assert.JSONEq(t, `{"q":"go"}`, string(m.ToolCalls[0].Arguments))
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "moderator", Role("moderator").DisplayName())
	assert.Equal(t, "Untitled thread", Thread{}.DisplayTitle())
	assert.Equal(t, "Plans", Thread{Title: "Plans"}.DisplayTitle())
	assert.Equal(t, "gpt-x", ModelInfo{ID: "gpt-x"}.DisplayName())
	assert.Equal(t, "GPT X", ModelInfo{ID: "gpt-x", Name: "GPT X"}.DisplayName())
}
