package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studiowebux/postboard/internal/board"
	"github.com/studiowebux/postboard/internal/keybinds"
)

// Options configures the TUI
type Options struct {
	// Keybinds defaults to the built-in registry
	Keybinds *keybinds.Registry

	Logger zerolog.Logger

	// BaseURL is shown in the status bar
	BaseURL string

	// MessageTimeout clears status and error messages after the given
	// duration. Zero keeps them until replaced.
	MessageTimeout time.Duration
}

// New creates a new TUI model. Requests issued by the model are bound to ctx.
func New(ctx context.Context, client PostsClient, opts Options) Model {
	if opts.Keybinds == nil {
		opts.Keybinds = keybinds.NewDefaultRegistry()
	}

	ctx, cancel := context.WithCancel(ctx)

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 0 // posts are edited in full
	title.Prompt = ""

	body := textarea.New()
	body.Placeholder = "Body"
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.MaxHeight = 0
	body.SetHeight(bodyInputHeight)

	search := textinput.New()
	search.Placeholder = "jump to title"
	search.Prompt = ""

	return Model{
		client:         client,
		board:          board.New(),
		keybinds:       opts.Keybinds,
		log:            opts.Logger,
		baseURL:        opts.BaseURL,
		ctx:            ctx,
		cancel:         cancel,
		mode:           ModeNormal,
		focus:          focusList,
		titleInput:     title,
		bodyInput:      body,
		searchInput:    search,
		helpView:       viewport.New(80, 20),
		pendingDeletes: make(map[int]bool),
		messageTimeout: opts.MessageTimeout,
	}
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, client PostsClient, opts Options) error {
	m := New(ctx, client, opts)
	defer m.Cleanup()

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
