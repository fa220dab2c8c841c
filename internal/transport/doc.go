// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport performs HTTP requests against the chat backend.
//
// The repositories depend only on the Doer interface; Client is the
// production implementation. It attaches the X-API-Key header when a key is
// configured, encodes JSON bodies, applies an optional client-side rate
// limit, and uses pooled connections. Streaming requests go through a client
// without an overall timeout so long responses are bounded by the context
// only.
//
// # Usage
//
//	c := transport.NewClient("https://chat.example.com", apiKey).
//	    WithTimeout(30 * time.Second).
//	    WithRateLimit(5, 10)
//	resp, err := c.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/v1/threads"})
//
// # Security
//
// The API key is never logged. Request logs carry method, path, status and
// duration only.
package transport
