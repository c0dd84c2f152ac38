package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/postboard/internal/keybinds"
)

// handleKeyPress routes key presses based on current mode and focus
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	}

	if m.focus == focusList {
		return m.handleListKeys(msg)
	}
	return m.handleFormKeys(msg)
}

// handleListKeys handles keys while the post list has focus
func (m *Model) handleListKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, partial := m.keybinds.MatchMultiKey(keybinds.ContextList, msg.String())
	if partial {
		// Waiting for the second key of a sequence
		return nil
	}
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		return m.quit()

	case keybinds.ActionNavigateUp:
		m.navigate(-1)
	case keybinds.ActionNavigateDown:
		m.navigate(1)
	case keybinds.ActionPageUp:
		m.navigate(-m.visibleItems())
	case keybinds.ActionPageDown:
		m.navigate(m.visibleItems())
	case keybinds.ActionGoToTop:
		m.cursor = 0
		m.clampCursor()
	case keybinds.ActionGoToBottom:
		m.cursor = m.board.Len() - 1
		m.clampCursor()

	case keybinds.ActionEditPost:
		return m.startEdit()
	case keybinds.ActionDeletePost:
		return m.deleteSelected()
	case keybinds.ActionRefresh:
		m.statusMsg = "Refreshing..."
		return m.fetchPosts()
	case keybinds.ActionCopyPost:
		return m.copyPost()
	case keybinds.ActionSubmit:
		return m.submit()
	case keybinds.ActionCancelEdit:
		return m.cancelEdit()

	case keybinds.ActionFocusForm:
		m.setFocus(focusTitle)
	case keybinds.ActionOpenSearch:
		m.mode = ModeSearch
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchMatches = nil
	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp
		m.updateHelpView()
	}

	return nil
}

// handleFormKeys handles keys while the title or body field has focus.
// Unbound keys are typed into the focused field.
func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextForm, msg.String()); ok {
		switch action {
		case keybinds.ActionQuitForce:
			return m.quit()
		case keybinds.ActionSubmit:
			return m.submit()
		case keybinds.ActionCancelEdit:
			return m.cancelEdit()
		case keybinds.ActionNextField:
			m.setFocus((m.focus + 1) % 3)
			return nil
		case keybinds.ActionPrevField:
			m.setFocus((m.focus + 2) % 3)
			return nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
		m.board.SetTitle(m.titleInput.Value())
	case focusBody:
		m.bodyInput, cmd = m.bodyInput.Update(msg)
		m.board.SetBody(m.bodyInput.Value())
	}
	return cmd
}

// handleSearchKeys handles the jump-to-post input
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextSearch, msg.String()); ok {
		switch action {
		case keybinds.ActionQuitForce:
			return m.quit()
		case keybinds.ActionSearchConfirm:
			m.mode = ModeNormal
			m.searchInput.Blur()
			if len(m.searchMatches) == 0 && m.searchInput.Value() != "" {
				return m.setErrorMessage("No matching posts found")
			}
			return nil
		case keybinds.ActionSearchCancel:
			m.mode = ModeNormal
			m.searchInput.Blur()
			m.searchMatches = nil
			return nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.performSearch()
	return cmd
}

// handleHelpKeys handles keys in the help viewer
func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextHelp, msg.String()); ok {
		switch action {
		case keybinds.ActionQuitForce:
			return m.quit()
		case keybinds.ActionCloseModal:
			m.mode = ModeNormal
			return nil
		}
	}

	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return cmd
}

// quit aborts in-flight requests and stops the program
func (m *Model) quit() tea.Cmd {
	m.Cleanup()
	return tea.Quit
}
