// Package board holds the view state of the post list: the posts, the form
// draft, and the post being edited. It performs no I/O; callers apply the
// results of remote calls to it.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studiowebux/postboard/internal/types"
)

// Mode is the state of the single form
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

var (
	// ErrRequiredField is returned when a submit is attempted with an empty title or body
	ErrRequiredField = errors.New("title and body are required")

	// ErrPostNotFound is returned when an id does not match any post in the list
	ErrPostNotFound = errors.New("post not found")
)

// Submission is the remote call a form submit resolves to
type Submission struct {
	Mode   Mode
	PostID int // only meaningful in ModeEdit
	Draft  types.Draft
}

// Board is the explicit state container for the posts view
type Board struct {
	posts   []types.Post
	draft   types.Draft
	editing *int
}

// New creates an empty board in create mode
func New() *Board {
	return &Board{}
}

// Posts returns a copy of the current post list in display order
func (b *Board) Posts() []types.Post {
	out := make([]types.Post, len(b.posts))
	copy(out, b.posts)
	return out
}

// Len returns the number of posts
func (b *Board) Len() int {
	return len(b.posts)
}

// At returns the post at index i
func (b *Board) At(i int) (types.Post, bool) {
	if i < 0 || i >= len(b.posts) {
		return types.Post{}, false
	}
	return b.posts[i], true
}

// Find returns the post with the given id
func (b *Board) Find(id int) (types.Post, bool) {
	if i := b.indexOf(id); i >= 0 {
		return b.posts[i], true
	}
	return types.Post{}, false
}

// Draft returns the current form values
func (b *Board) Draft() types.Draft {
	return b.draft
}

// Editing returns the id of the post being edited
func (b *Board) Editing() (int, bool) {
	if b.editing == nil {
		return 0, false
	}
	return *b.editing, true
}

// Mode returns ModeEdit while an editing target is set
func (b *Board) Mode() Mode {
	if b.editing != nil {
		return ModeEdit
	}
	return ModeCreate
}

// Load replaces the post list with a fresh server listing.
// Repeated ids keep the first position and the last value.
func (b *Board) Load(posts []types.Post) {
	b.posts = make([]types.Post, 0, len(posts))
	for _, p := range posts {
		b.upsert(p)
	}
}

// SetTitle records a title input event
func (b *Board) SetTitle(title string) {
	b.draft.Title = title
}

// SetBody records a body input event
func (b *Board) SetBody(body string) {
	b.draft.Body = body
}

// StartEdit switches to edit mode for the given post and copies its fields into the draft
func (b *Board) StartEdit(id int) error {
	p, ok := b.Find(id)
	if !ok {
		return fmt.Errorf("edit post %d: %w", id, ErrPostNotFound)
	}
	b.editing = &id
	b.draft = types.DraftOf(p)
	return nil
}

// CancelEdit leaves edit mode and clears the draft
func (b *Board) CancelEdit() {
	if b.editing == nil {
		return
	}
	b.editing = nil
	b.draft = types.Draft{}
}

// Submission returns the call a submit would issue with the current state
func (b *Board) Submission() (Submission, error) {
	if strings.TrimSpace(b.draft.Title) == "" || strings.TrimSpace(b.draft.Body) == "" {
		return Submission{}, ErrRequiredField
	}
	s := Submission{Mode: ModeCreate, Draft: b.draft}
	if b.editing != nil {
		s.Mode = ModeEdit
		s.PostID = *b.editing
	}
	return s, nil
}

// ApplyCreated appends a post returned by the create call and resets the form
func (b *Board) ApplyCreated(p types.Post) {
	b.upsert(p)
	b.draft = types.Draft{}
}

// ApplyUpdated replaces the entry addressed by the update call with the
// server response. If that entry was the editing target the form returns to
// create mode. A response carrying another post's id replaces that post too.
func (b *Board) ApplyUpdated(id int, p types.Post) {
	i := b.indexOf(id)
	switch {
	case i < 0:
		b.upsert(p)
	case p.ID == id:
		b.posts[i] = p
	default:
		b.posts[i] = p
		for j := len(b.posts) - 1; j >= 0; j-- {
			if j != i && b.posts[j].ID == p.ID {
				b.posts = append(b.posts[:j], b.posts[j+1:]...)
			}
		}
	}
	if b.editing != nil && *b.editing == id {
		b.editing = nil
		b.draft = types.Draft{}
	}
}

// ApplyDeleted removes the post with the given id. Deleting the editing
// target drops the target but keeps the draft, so the text can be resubmitted as a new post.
func (b *Board) ApplyDeleted(id int) {
	if i := b.indexOf(id); i >= 0 {
		b.posts = append(b.posts[:i], b.posts[i+1:]...)
	}
	if b.editing != nil && *b.editing == id {
		b.editing = nil
	}
}

func (b *Board) upsert(p types.Post) {
	if i := b.indexOf(p.ID); i >= 0 {
		b.posts[i] = p
		return
	}
	b.posts = append(b.posts, p)
}

func (b *Board) indexOf(id int) int {
	for i, p := range b.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
