/*
Package tui implements the interactive posts view.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: holds the board (posts, draft, editing target) and UI chrome
  - Update: the only place state changes; runs on a single goroutine
  - View: renders the current state, no side effects

Remote calls run as tea.Cmd goroutines bound to the model's root context.
Their results come back as messages (postsLoadedMsg, postCreatedMsg,
postUpdatedMsg, postDeletedMsg, requestFailedMsg) and are applied in
delivery order. A failed call leaves the board untouched and shows a
categorized error in the status bar.

# Key Components

  - model.go: Model struct, message types, Update and View
  - keys.go: key routing per mode and focus through the keybind registry
  - actions.go: commands (fetch, submit, delete, copy) and cursor helpers
  - render.go: list, form, status bar and help rendering
  - error_categorizer.go: user-facing error descriptions
*/
package tui
