package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/studiowebux/postboard/internal/board"
	"github.com/studiowebux/postboard/internal/keybinds"
	"github.com/studiowebux/postboard/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeHelp
)

// focusArea is the part of the screen receiving keys in ModeNormal
type focusArea int

const (
	focusList focusArea = iota
	focusTitle
	focusBody
)

// PostsClient is the remote store the view talks to
type PostsClient interface {
	List(ctx context.Context) ([]types.Post, error)
	Create(ctx context.Context, draft types.Draft) (types.Post, error)
	Update(ctx context.Context, id int, draft types.Draft) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// Model represents the TUI state
type Model struct {
	// Core state
	client   PostsClient
	board    *board.Board
	keybinds *keybinds.Registry
	log      zerolog.Logger
	baseURL  string

	// Root context of every request; cancelled on quit
	ctx    context.Context
	cancel context.CancelFunc

	mode   Mode
	focus  focusArea
	cursor int // Selected post index
	offset int // Scroll offset of the list

	// Form
	titleInput textinput.Model
	bodyInput  textarea.Model

	// Jump-to-post search
	searchInput   textinput.Model
	searchMatches []int

	helpView viewport.Model

	// In-flight tracking
	loading        bool
	submitting     bool
	pendingDeletes map[int]bool

	// UI state
	width          int
	height         int
	statusMsg      string
	errorMsg       string // Truncated error for footer
	fullStatusMsg  string
	fullErrorMsg   string
	messageTimeout time.Duration
}

// Init fetches the post list on mount
func (m *Model) Init() tea.Cmd {
	return m.fetchPosts()
}

// Cleanup aborts every in-flight request
func (m *Model) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()

	case postsLoadedMsg:
		m.loading = false
		m.board.Load(msg.posts)
		m.clampCursor()
		m.errorMsg = ""
		m.fullErrorMsg = ""
		m.log.Debug().Int("count", len(msg.posts)).Msg("posts loaded")
		cmd = m.setStatusMessage(fmt.Sprintf("Loaded %d posts", len(msg.posts)))

	case postCreatedMsg:
		m.submitting = false
		m.board.ApplyCreated(msg.post)
		m.syncInputs()
		m.errorMsg = ""
		m.fullErrorMsg = ""
		m.log.Info().Int("id", msg.post.ID).Msg("post created")
		cmd = m.setStatusMessage(fmt.Sprintf("Created post %d", msg.post.ID))

	case postUpdatedMsg:
		m.submitting = false
		m.board.ApplyUpdated(msg.id, msg.post)
		m.syncInputs()
		m.clampCursor()
		m.errorMsg = ""
		m.fullErrorMsg = ""
		m.log.Info().Int("id", msg.id).Msg("post updated")
		cmd = m.setStatusMessage(fmt.Sprintf("Updated post %d", msg.id))

	case postDeletedMsg:
		delete(m.pendingDeletes, msg.id)
		m.board.ApplyDeleted(msg.id)
		m.clampCursor()
		m.errorMsg = ""
		m.fullErrorMsg = ""
		m.log.Info().Int("id", msg.id).Msg("post deleted")
		cmd = m.setStatusMessage(fmt.Sprintf("Deleted post %d", msg.id))

	case requestFailedMsg:
		cmd = m.handleRequestFailed(msg)

	case clipboardCopiedMsg:
		m.errorMsg = ""
		cmd = m.setStatusMessage(fmt.Sprintf("Post %d copied to clipboard", msg.id))

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))

	case clearStatusMsg:
		m.statusMsg = ""
		m.fullStatusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
		m.fullErrorMsg = ""
	}

	return m, cmd
}

// handleRequestFailed releases the in-flight marker of the failed call.
// The board is left exactly as it was before the call.
func (m *Model) handleRequestFailed(msg requestFailedMsg) tea.Cmd {
	switch msg.op {
	case types.OpList:
		m.loading = false
	case types.OpCreate, types.OpUpdate:
		m.submitting = false
	case types.OpDelete:
		delete(m.pendingDeletes, msg.postID)
	}

	m.log.Error().
		Err(msg.err).
		Str("op", string(msg.op)).
		Int("post_id", msg.postID).
		Msg("request failed")

	return m.setErrorMessage(fmt.Sprintf("%s failed: %s", opLabel(msg.op, msg.postID), categorizeError(msg.err)))
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.mode == ModeHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Message types
type postsLoadedMsg struct {
	posts []types.Post
}

type postCreatedMsg struct {
	post types.Post
}

type postUpdatedMsg struct {
	id   int
	post types.Post
}

type postDeletedMsg struct {
	id int
}

type requestFailedMsg struct {
	op     types.Operation
	postID int
	err    error
}

type clipboardCopiedMsg struct {
	id int
}

type clearStatusMsg struct{}
type clearErrorMsg struct{}

type errorMsg string

// Helper methods for setting messages with optional timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.fullStatusMsg = msg
	m.statusMsg = truncateMessage(msg)

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})
	}
	return nil
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.fullErrorMsg = msg
	m.errorMsg = truncateMessage(msg)

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearErrorMsg{}
		})
	}
	return nil
}

// truncateMessage shortens a message for footer display
func truncateMessage(msg string) string {
	return ansi.Truncate(msg, maxFooterMessage, "...")
}

func opLabel(op types.Operation, id int) string {
	switch op {
	case types.OpList:
		return "Loading posts"
	case types.OpCreate:
		return "Creating post"
	case types.OpUpdate:
		return fmt.Sprintf("Updating post %d", id)
	case types.OpDelete:
		return fmt.Sprintf("Deleting post %d", id)
	}
	return string(op)
}
