// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the rigrun-chat command line.

Running rigrun-chat with no subcommand starts the interactive TUI when stdout
is a terminal. Every other command performs one operation against the chat
backend and prints the result as a table, or as JSON with --json.

# Commands

	threads [--limit N --offset N]    List conversation threads
	thread <id>                       Show one thread
	messages <thread-id>              Show the messages of a thread
	export <thread-id>                Export a thread to Markdown or JSON
	send <text> [--thread --model]    Send a message and stream the reply
	models                            List available models
	prompt get <name>                 Show a system prompt
	prompt set <name> <content>       Replace a system prompt
	terminal sessions                 List terminal sessions
	terminal session <id>             Show one terminal session
	status                            Check the backend endpoints
	cache stats | clear [--expired]   Manage the persistent cache
	config init | show | path         Manage the configuration file

# Global Flags

	--config PATH   Use this configuration file
	--verbose       Debug logging
	--json          Machine-readable output

# Exit Codes

Failures map to stable exit codes (see errors.go) so scripts can tell an
authentication failure from a network outage.
*/
package cli
