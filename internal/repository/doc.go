// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repository combines the TTL cache, the HTTP transport and error
// normalization for each backend resource.
//
// Every failure that leaves this package is an apierr.Error, except context
// cancellation, which is returned as the context's own error. Reads check the
// in-memory cache first, then the optional persistent cache, then the
// network. A failed load removes the key from both caches so the next call
// goes back to the network.
//
// # Key Types
//
//   - ThreadRepository: paginated thread listing and thread lookup
//   - MessageRepository: messages of a thread
//   - ChatRepository: streamed and synchronous chat turns, model listing
//   - SystemPromptRepository: named system prompts
//   - TerminalRepository: terminal sessions on a separately configured host
//   - Result: one emission of a streaming operation
//
// # Usage
//
//	client := transport.NewClient(cfg.API.BaseURL, cfg.API.APIKey)
//	threads := repository.NewThreadRepository(client, repository.WithTTL(5*time.Minute))
//	list, err := threads.ListThreads(ctx, 20, 0)
//
// Values returned from the cache are shared with later callers and must be
// treated as read-only.
package repository
