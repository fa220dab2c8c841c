// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes a server-sent event body into chat response chunks.
//
// Records are separated by a blank line. Each `data:` line of a record is an
// independent payload: either the `[DONE]` sentinel, which is discarded, or a
// JSON object whose "type" selects the chunk variant. Payloads that fail to
// decode are dropped; servers interleave keep-alive noise with real events.
//
// # Key Types
//
//   - Chunk: closed set of Delta, ToolCall, ErrorChunk and Done
//   - Parser: pull-based reader; call Next until it returns io.EOF
//
// # Usage
//
//	p := stream.NewParser(resp.Body)
//	for {
//	    chunk, err := p.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err // ctx.Err() or an apierr.Error
//	    }
//	    handle(chunk)
//	}
//
// An ErrorChunk is always followed by a terminating HTTP 500 "Stream error".
package stream
