// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view of the rigrun-chat TUI.

The view is a thin Bubble Tea adapter over the state store. It owns no chat
data: every key press becomes a store intent, and every frame renders the
latest ChatState delivered on the store's Updates channel.

# Key Components

## Model (model.go)

Model holds the injected Store, the bubbles components (viewport, text
input, spinner, help) and purely visual state such as focus, the sidebar
cursor and the current notice.

## Update Loop (update.go)

  - Store updates arrive as stateMsg and replace the rendered state
  - Store effects arrive as effectMsg: ShowError raises a timed notice,
    OpenThread selects the thread created by the first message
  - Key presses dispatch intents (send, cancel, select, load more)

## View Rendering (view.go)

Header, thread sidebar, transcript and input line. Completed assistant
messages are rendered as markdown with glamour; the message receiving
deltas is shown as plain text until the turn ends.

# Usage

	st := store.New(threads, messages, chatRepo)
	defer st.Close()
	p := tea.NewProgram(chat.New(chat.Options{Store: st}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
*/
package chat
