package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal Context = "global" // Available everywhere
	ContextList   Context = "list"   // Post list has focus
	ContextForm   Context = "form"   // Title or body field has focus
	ContextSearch Context = "search" // Jump-to-post search input
	ContextHelp   Context = "help"   // Help viewer
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)
	ActionOpenHelp  Action = "open_help"  // Show keybinding help

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"    // Move up one post
	ActionNavigateDown Action = "navigate_down"  // Move down one post
	ActionPageUp       Action = "page_up"        // Move up one page
	ActionPageDown     Action = "page_down"      // Move down one page
	ActionGoToTop      Action = "go_to_top"      // Go to first post
	ActionGoToBottom   Action = "go_to_bottom"   // Go to last post
	ActionGoToTopStart Action = "go_to_top_prep" // First 'g' in 'gg' sequence

	// Focus
	ActionFocusForm Action = "focus_form" // Move focus to the form
	ActionNextField Action = "next_field" // Title -> body -> list
	ActionPrevField Action = "prev_field" // Body -> title -> list

	// Post actions
	ActionEditPost   Action = "edit_post"   // Load selected post into the form
	ActionDeletePost Action = "delete_post" // Delete selected post
	ActionRefresh    Action = "refresh"     // Re-fetch the post list
	ActionCopyPost   Action = "copy_post"   // Copy selected post as JSON
	ActionOpenSearch Action = "open_search" // Fuzzy jump to a post by title

	// Form actions
	ActionSubmit     Action = "submit"      // Create or update
	ActionCancelEdit Action = "cancel_edit" // Leave edit mode / back to list

	// Search and modal actions
	ActionSearchConfirm Action = "search_confirm"
	ActionSearchCancel  Action = "search_cancel"
	ActionCloseModal    Action = "close_modal"
)

// knownActions lists every action a user config may bind
var knownActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true, ActionOpenHelp: true,
	ActionNavigateUp: true, ActionNavigateDown: true, ActionPageUp: true, ActionPageDown: true,
	ActionGoToTop: true, ActionGoToBottom: true, ActionGoToTopStart: true,
	ActionFocusForm: true, ActionNextField: true, ActionPrevField: true,
	ActionEditPost: true, ActionDeletePost: true, ActionRefresh: true, ActionCopyPost: true, ActionOpenSearch: true,
	ActionSubmit: true, ActionCancelEdit: true,
	ActionSearchConfirm: true, ActionSearchCancel: true, ActionCloseModal: true,
}

// IsKnown reports whether a is a bindable action
func IsKnown(a Action) bool {
	return knownActions[a]
}
