package tui

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Panels
	ListWidthPercent = 55 // Share of the width given to the post list
	MinListWidth     = 30 // Below this the list takes half the screen
	PanelBorderWidth = 2  // Width consumed by a rounded border
	StatusBarHeight  = 1

	// Post list items: title, body, affordances, blank separator
	ListItemHeight    = 4
	ListHeaderHeight  = 2 // Heading + blank line
	HelpViewOverhead  = 6 // Title (2) + padding (2) + border (2)
	HelpViewMarginW   = 6
	FormHintLines     = 2
	maxFooterMessage  = 100
	bodyInputHeight   = 6
	formInputPaddingW = 4
)
