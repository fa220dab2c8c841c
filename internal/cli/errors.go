// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error presentation for CLI commands.
//
// STANDARDIZED PATTERN:
//   - Commands always return errors and never print them
//   - Execute prints the error once and maps it to an exit code

package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates an authentication or authorization failure
	ExitAuthError = 4
	// ExitNetworkError indicates a network or connectivity error
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// ConfigError reports a configuration that could not be loaded or used.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// UsageError reports invalid arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	e, ok := apierr.As(err)
	if !ok {
		return ExitGeneralError
	}
	switch v := e.(type) {
	case *apierr.AuthenticationError:
		return ExitAuthError
	case *apierr.NetworkError:
		return ExitNetworkError
	case *apierr.TimeoutError:
		return ExitTimeoutError
	case *apierr.ValidationError:
		return ExitUsageError
	case *apierr.HTTPError:
		switch {
		case apierr.IsAuthentication(v):
			return ExitAuthError
		case v.Code == http.StatusNotFound:
			return ExitNotFoundError
		}
	}
	return ExitGeneralError
}

// printError writes a one-line error with a hint for the suggested action.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, ErrorStyle.Render("Error:"), apierr.UserMessage(err))

	if _, ok := apierr.As(err); !ok {
		return
	}
	switch apierr.Classify(err).Action {
	case apierr.ActionReauthenticate:
		fmt.Fprintln(w, DimStyle.Render("Check api.api_key in the config file or RIGRUN_CHAT_API_KEY."))
	case apierr.ActionRetry:
		fmt.Fprintln(w, DimStyle.Render("The request can be retried."))
	}
}
