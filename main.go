// rigrun-chat - Terminal client for rigrun chat threads.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/rigrun-chat/internal/cli"
)

// Version information (set at build time)
var Version = "0.1.0"

func main() {
	os.Exit(cli.Execute(Version))
}
