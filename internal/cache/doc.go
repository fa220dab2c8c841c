// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides the caches shared by the repositories.
//
// # Key Types
//
//   - TTL: generic in-memory map whose entries expire a fixed duration after they are stored
//   - Persistent: interface for an optional disk-backed cache the repositories may delegate to
//   - SQLiteStore: Persistent implementation on a pure Go SQLite database
//
// # Usage
//
//	threads := cache.New[string, model.Thread](5 * time.Minute)
//	threads.Put(id, thread)
//	if t, ok := threads.Get(id); ok {
//	    // fresh
//	}
//
// Expiration is checked lazily on Get. There is no background eviction.
package cache
