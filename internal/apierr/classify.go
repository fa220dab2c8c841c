// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apierr

// Severity ranks how loudly the UI should surface an error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Action is the suggested user response.
type Action string

const (
	ActionRetry          Action = "retry"
	ActionDismiss        Action = "dismiss"
	ActionReauthenticate Action = "reauthenticate"
)

// Classification is the presentation mapping of an error.
type Classification struct {
	Severity  Severity
	Action    Action
	Retryable bool
}

// Classify maps err to its presentation. Errors outside the taxonomy are
// treated like UnknownError.
func Classify(err error) Classification {
	e, ok := As(err)
	if !ok {
		return Classification{Severity: SeverityError, Action: ActionDismiss}
	}
	switch v := e.(type) {
	case *AuthenticationError:
		return Classification{Severity: SeverityError, Action: ActionReauthenticate}
	case *HTTPError:
		switch {
		case v.Code == 401 || v.Code == 403:
			return Classification{Severity: SeverityError, Action: ActionReauthenticate}
		case v.Code >= 500:
			return Classification{Severity: SeverityCritical, Action: ActionRetry, Retryable: true}
		case v.Code == 429:
			return Classification{Severity: SeverityWarning, Action: ActionRetry, Retryable: true}
		default:
			return Classification{Severity: SeverityError, Action: ActionDismiss}
		}
	case *NetworkError, *TimeoutError:
		return Classification{Severity: SeverityWarning, Action: ActionRetry, Retryable: true}
	case *ValidationError:
		return Classification{Severity: SeverityInfo, Action: ActionDismiss}
	case *SerializationError, *UnknownError:
		return Classification{Severity: SeverityError, Action: ActionDismiss}
	default:
		return Classification{Severity: SeverityError, Action: ActionDismiss}
	}
}

// IsRetryable reports whether retrying the same call may succeed.
func IsRetryable(err error) bool {
	return Classify(err).Retryable
}
