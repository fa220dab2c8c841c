// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apierr defines the closed set of errors a repository may return.
//
// Every failure that crosses a repository boundary is exactly one of the
// variants below. The set is sealed: Error carries an unexported method, so
// no other package can add a variant, and a type switch over the seven
// pointer types is exhaustive.
//
// # Variants
//
//   - NetworkError: the request never produced a response
//   - HTTPError: the server answered with a non-2xx status
//   - SerializationError: a 2xx body could not be decoded
//   - ValidationError: the call was rejected locally before any I/O
//   - AuthenticationError: credentials rejected or unusable
//   - TimeoutError: the request or stream ran out of time
//   - UnknownError: anything else
//
// # Presentation
//
// Classify maps an error to a severity and a suggested action for the UI:
//
//	c := apierr.Classify(err)
//	if c.Retryable {
//	    // offer retry
//	}
package apierr
