package tui

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/postboard/internal/board"
	"github.com/studiowebux/postboard/internal/types"
)

// fetchPosts re-reads the full list from the server
func (m *Model) fetchPosts() tea.Cmd {
	m.loading = true
	ctx, client := m.ctx, m.client

	return func() tea.Msg {
		posts, err := client.List(ctx)
		if err != nil {
			return requestFailedMsg{op: types.OpList, err: err}
		}
		return postsLoadedMsg{posts: posts}
	}
}

// submit creates or updates depending on the form mode.
// A submit while another is in flight is ignored.
func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return m.setStatusMessage("Submit already in progress")
	}

	s, err := m.board.Submission()
	if err != nil {
		return m.setErrorMessage(categorizeError(err))
	}

	m.submitting = true
	m.errorMsg = ""
	m.fullErrorMsg = ""
	ctx, client := m.ctx, m.client

	if s.Mode == board.ModeEdit {
		m.statusMsg = fmt.Sprintf("Updating post %d...", s.PostID)
		return func() tea.Msg {
			post, err := client.Update(ctx, s.PostID, s.Draft)
			if err != nil {
				return requestFailedMsg{op: types.OpUpdate, postID: s.PostID, err: err}
			}
			return postUpdatedMsg{id: s.PostID, post: post}
		}
	}

	m.statusMsg = "Creating post..."
	return func() tea.Msg {
		post, err := client.Create(ctx, s.Draft)
		if err != nil {
			return requestFailedMsg{op: types.OpCreate, err: err}
		}
		return postCreatedMsg{post: post}
	}
}

// deleteSelected deletes the post under the cursor.
// A second delete of a post whose delete is still in flight is ignored.
func (m *Model) deleteSelected() tea.Cmd {
	post, ok := m.board.At(m.cursor)
	if !ok {
		return nil
	}
	if m.pendingDeletes[post.ID] {
		return m.setStatusMessage("Delete already in progress")
	}

	m.pendingDeletes[post.ID] = true
	m.statusMsg = fmt.Sprintf("Deleting post %d...", post.ID)
	ctx, client, id := m.ctx, m.client, post.ID

	return func() tea.Msg {
		if err := client.Delete(ctx, id); err != nil {
			return requestFailedMsg{op: types.OpDelete, postID: id, err: err}
		}
		return postDeletedMsg{id: id}
	}
}

// startEdit loads the selected post into the form
func (m *Model) startEdit() tea.Cmd {
	post, ok := m.board.At(m.cursor)
	if !ok {
		return nil
	}
	if err := m.board.StartEdit(post.ID); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.syncInputs()
	m.setFocus(focusTitle)
	return m.setStatusMessage(fmt.Sprintf("Editing post %d", post.ID))
}

// cancelEdit leaves edit mode, or just returns to the list in create mode
func (m *Model) cancelEdit() tea.Cmd {
	if m.board.Mode() != board.ModeEdit {
		m.setFocus(focusList)
		return nil
	}
	m.board.CancelEdit()
	m.syncInputs()
	m.setFocus(focusList)
	return m.setStatusMessage("Edit cancelled")
}

// copyPost copies the selected post as JSON to the clipboard
func (m *Model) copyPost() tea.Cmd {
	post, ok := m.board.At(m.cursor)
	if !ok {
		return nil
	}

	return func() tea.Msg {
		data, err := json.MarshalIndent(post, "", "  ")
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to encode post: %v", err))
		}
		if err := clipboard.WriteAll(string(data)); err != nil {
			return errorMsg(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		}
		return clipboardCopiedMsg{id: post.ID}
	}
}

// performSearch ranks post titles against the search query and moves the
// cursor to the best match
func (m *Model) performSearch() {
	query := m.searchInput.Value()
	m.searchMatches = nil
	if query == "" {
		return
	}

	posts := m.board.Posts()
	titles := make([]string, len(posts))
	for i, p := range posts {
		titles[i] = p.Title
	}

	for _, match := range fuzzy.Find(query, titles) {
		m.searchMatches = append(m.searchMatches, match.Index)
	}
	if len(m.searchMatches) > 0 {
		m.cursor = m.searchMatches[0]
		m.adjustScrollOffset()
	}
}

// navigate moves the cursor by delta, clamped to the list
func (m *Model) navigate(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor on an existing post
func (m *Model) clampCursor() {
	if n := m.board.Len(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScrollOffset()
}

// adjustScrollOffset keeps the cursor inside the visible window
func (m *Model) adjustScrollOffset() {
	visible := m.visibleItems()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// setFocus moves keyboard focus between the list and the form fields
func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.titleInput.Blur()
	m.bodyInput.Blur()

	// Blink commands are dropped; the cursor stays visible
	switch f {
	case focusTitle:
		m.titleInput.Focus()
	case focusBody:
		m.bodyInput.Focus()
	}
}

// syncInputs copies the board draft into the form fields
func (m *Model) syncInputs() {
	draft := m.board.Draft()
	if m.titleInput.Value() != draft.Title {
		m.titleInput.SetValue(draft.Title)
		m.titleInput.CursorEnd()
	}
	if m.bodyInput.Value() != draft.Body {
		m.bodyInput.SetValue(draft.Body)
	}
}
