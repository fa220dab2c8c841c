// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error is implemented only by the variants in this package.
type Error interface {
	error
	apiError()
}

// =============================================================================
// VARIANTS
// =============================================================================

// NetworkError wraps a transport failure.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return "network error"
	}
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }
func (*NetworkError) apiError()       {}

// HTTPError is a non-2xx response.
type HTTPError struct {
	Code    int
	Message string
	Detail  string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("HTTP %d %s", e.Code, e.Message)
}

func (*HTTPError) apiError() {}

// SerializationError is a decode failure of an otherwise successful body.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }
func (*SerializationError) apiError()       {}

// ValidationError rejects a call before any network activity.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

func (*ValidationError) apiError() {}

// AuthenticationError is returned for HTTP 401 and 403.
type AuthenticationError struct {
	Message string
	Detail  string
}

func (e *AuthenticationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("authentication failed: %s: %s", e.Message, e.Detail)
	}
	return "authentication failed: " + e.Message
}

func (*AuthenticationError) apiError() {}

// TimeoutError reports which deadline expired ("request", "deadline", "stream").
type TimeoutError struct {
	Kind string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out", e.Kind)
}

func (*TimeoutError) apiError() {}

// UnknownError wraps anything that fits no other variant.
type UnknownError struct {
	Cause error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Cause)
}

func (e *UnknownError) Unwrap() error { return e.Cause }
func (*UnknownError) apiError()       {}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// FromStatus builds the HTTPError for a non-2xx status.
func FromStatus(code int, detail string) *HTTPError {
	text := http.StatusText(code)
	if text == "" {
		text = fmt.Sprintf("status %d", code)
	}
	return &HTTPError{Code: code, Message: text, Detail: detail}
}

// IsAuthentication reports whether err means the credentials were rejected,
// either as an AuthenticationError or as an HTTP 401/403.
func IsAuthentication(err error) bool {
	e, ok := As(err)
	if !ok {
		return false
	}
	switch v := e.(type) {
	case *AuthenticationError:
		return true
	case *HTTPError:
		return v.Code == http.StatusUnauthorized || v.Code == http.StatusForbidden
	default:
		return false
	}
}

// NotImplemented is the error for server operations that are declared but absent.
func NotImplemented(detail string) *HTTPError {
	return &HTTPError{Code: http.StatusNotImplemented, Message: "Not Implemented", Detail: detail}
}

// Wrap converts err into an Error. Values that already are an Error are
// returned as is, as are context cancellation errors, which callers must be
// able to recognise unchanged. A nil err yields nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var e Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Kind: "deadline"}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TimeoutError{Kind: "request"}
	}
	return &NetworkError{Cause: err}
}

// As reports whether err is, or wraps, an Error and returns it.
func As(err error) (Error, bool) {
	var e Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCanceled reports whether err is a cancellation signal rather than a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var h *HTTPError
	if errors.As(err, &h) {
		return h.Code
	}
	return 0
}

// UserMessage is the short text shown next to a failed resource in the UI.
func UserMessage(err error) string {
	e, ok := As(err)
	if !ok {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch v := e.(type) {
	case *NetworkError:
		return "Unable to reach the server. Check your connection."
	case *HTTPError:
		if v.Code == http.StatusUnauthorized || v.Code == http.StatusForbidden {
			return "Authentication failed. Check your API key."
		}
		if v.Detail != "" {
			return fmt.Sprintf("Server error %d: %s", v.Code, v.Detail)
		}
		return fmt.Sprintf("Server error %d: %s", v.Code, v.Message)
	case *SerializationError:
		return "The server sent a response that could not be read."
	case *ValidationError:
		return v.Message
	case *AuthenticationError:
		return "Authentication failed. Check your API key."
	case *TimeoutError:
		return "The request timed out."
	case *UnknownError:
		return "Something went wrong."
	default:
		return e.Error()
	}
}
