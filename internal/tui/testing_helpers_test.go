package tui

import (
	"context"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studiowebux/postboard/internal/api"
	"github.com/studiowebux/postboard/internal/mock"
	"github.com/studiowebux/postboard/internal/types"
)

// CreateTestModel creates a sized Model backed by a fake posts API holding posts
func CreateTestModel(t *testing.T, posts []types.Post) (*Model, *mock.Server) {
	t.Helper()

	srv := mock.NewServer(&mock.Config{Posts: posts}, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(ts.URL)
	if err != nil {
		t.Fatalf("Failed to create API client: %v", err)
	}

	m := New(context.Background(), client, Options{BaseURL: ts.URL})
	t.Cleanup(m.Cleanup)

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 60})
	return &m, srv
}

// MountTestModel creates a model and applies the initial fetch
func MountTestModel(t *testing.T, posts []types.Post) (*Model, *mock.Server) {
	t.Helper()

	m, srv := CreateTestModel(t, posts)
	RunCmd(t, m, m.Init())
	return m, srv
}

// RunCmd executes a command synchronously and feeds its message back into
// the model, the way the bubbletea runtime would
func RunCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()

	if cmd == nil {
		t.Fatal("Expected a command but got nil")
	}
	m.Update(cmd())
}

// PressKey sends a single key press and returns the resulting command
func PressKey(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyMsg(key))
	return cmd
}

// TypeText types s into whatever has focus, one rune at a time
func TypeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(key string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"shift+tab": tea.KeyShiftTab,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"ctrl+s":    tea.KeyCtrlS,
		"ctrl+c":    tea.KeyCtrlC,
		"ctrl+u":    tea.KeyCtrlU,
	}
	if kt, ok := special[key]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// countRequests counts logged requests to the fake API with the given method
func countRequests(srv *mock.Server, method string) int {
	n := 0
	for _, l := range srv.GetLogs() {
		if l.Method == method {
			n++
		}
	}
	return n
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
