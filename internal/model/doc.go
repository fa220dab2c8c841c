// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the resource types exchanged with the chat backend.
//
// # Key Types
//
//   - Thread: a conversation thread as listed by the server
//   - Message: a single message in a thread, with optional tool calls
//   - ChatRequest / ChatResponse: one chat turn
//   - ModelInfo: a model the backend can answer with
//   - SystemPrompt: a named, editable system prompt
//   - TerminalSession: a session on the terminal service
//
// All types are plain values with JSON tags matching the wire format.
package model
