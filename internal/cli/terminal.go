// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the rigrun-chat CLI.
//
// USABILITY: The interactive view only starts when both ends are a terminal;
// piped output gets no ANSI colors.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const fallbackWidth = 80

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// interactive reports whether stdin and stdout are both attached to a
// terminal.
func interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// outputWidth is the stdout terminal width, or 80 when it cannot be read.
func outputWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackWidth
}

// colorProfile honors NO_COLOR (https://no-color.org/) and FORCE_COLOR before
// falling back to detection on stdout.
var colorProfile = sync.OnceValue(func() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return termenv.NewOutput(os.Stdout, termenv.WithUnsafe()).EnvColorProfile()
	}
	return termenv.NewOutput(os.Stdout).EnvColorProfile()
})
