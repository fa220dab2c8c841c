// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the single authoritative chat state.
//
// The UI submits Intents with Dispatch. Each intent runs as its own goroutine
// bound to the store's context, calls the repositories, and reports progress
// as Msg values. Reduce folds each Msg into a new ChatState; reductions are
// serialized, so observers never see a partial update. Results of different
// intents are not ordered against each other.
//
// # Key Types
//
//   - ChatState: threads, messages, models, loading flags and error strings
//   - Intent: a user action (LoadThreads, SelectThread, SendMessage, ...)
//   - Msg: an internal state transition consumed by Reduce
//   - Effect: a one-shot notification such as ShowError or OpenThread
//   - Store: the executor and state owner
//
// # Usage
//
//	s := store.New(threads, messages, chat, store.WithPageSize(20))
//	defer s.Close()
//	s.Dispatch(store.LoadThreads{})
//	for state := range s.Updates() {
//	    render(state)
//	}
//
// Updates conflates: a slow observer sees the latest state, not every state.
// Effects are delivered once and dropped if the buffer is full.
package store
