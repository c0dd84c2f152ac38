package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studiowebux/postboard/internal/analytics"
	"github.com/studiowebux/postboard/internal/api"
	"github.com/studiowebux/postboard/internal/history"
	"github.com/studiowebux/postboard/internal/mock"
	"github.com/studiowebux/postboard/internal/types"
)

func newTestClient(t *testing.T, seed int, opts ...api.Option) (*api.Client, *mock.Server) {
	t.Helper()

	srv := mock.NewServer(&mock.Config{Seed: seed}, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(ts.URL, opts...)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client, srv
}

func TestRunList_Formats(t *testing.T) {
	client, _ := newTestClient(t, 2)

	tests := []struct {
		format string
		want   []string
	}{
		{format: FormatJSON, want: []string{`"id": 1`, `"title": "Post 2"`}},
		{format: FormatYAML, want: []string{"- id: 1", "title: Post 2"}},
		{format: FormatText, want: []string{"[1] Post 1", "    Body of post 2", "2 posts"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			if err := RunList(context.Background(), client, OutputOptions{Out: &out, Format: tt.format}); err != nil {
				t.Fatalf("RunList failed: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("Output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestRunList_Query(t *testing.T) {
	client, _ := newTestClient(t, 12)

	var out bytes.Buffer
	opts := OutputOptions{Out: &out, Format: FormatJSON, Query: "[?userId==`2`].id"}
	if err := RunList(context.Background(), client, opts); err != nil {
		t.Fatalf("RunList failed: %v", err)
	}

	want := "[\n  11,\n  12\n]\n"
	if out.String() != want {
		t.Errorf("Output = %q, want %q", out.String(), want)
	}
}

func TestRunList_QueryAsYAML(t *testing.T) {
	client, _ := newTestClient(t, 3)

	var out bytes.Buffer
	opts := OutputOptions{Out: &out, Format: FormatYAML, Query: "[].title"}
	if err := RunList(context.Background(), client, opts); err != nil {
		t.Fatalf("RunList failed: %v", err)
	}

	if !strings.Contains(out.String(), "- Post 3") {
		t.Errorf("Expected YAML list, got:\n%s", out.String())
	}
}

func TestRunList_ServerError(t *testing.T) {
	client, srv := newTestClient(t, 1)
	srv.FailNext(http.MethodGet, http.StatusBadGateway)

	err := RunList(context.Background(), client, OutputOptions{Out: &bytes.Buffer{}})
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("Expected 502 StatusError, got %v", err)
	}
}

func TestRunCreate(t *testing.T) {
	client, srv := newTestClient(t, 100)

	var out bytes.Buffer
	draft := types.Draft{Title: "New Post", Body: "This is a new post."}
	if err := RunCreate(context.Background(), client, draft, OutputOptions{Out: &out, Format: FormatText}); err != nil {
		t.Fatalf("RunCreate failed: %v", err)
	}

	if !strings.HasPrefix(out.String(), "[101] New Post") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
	if len(srv.Posts()) != 101 {
		t.Errorf("Expected 101 posts on server, got %d", len(srv.Posts()))
	}
}

func TestRunCreate_RequiresFields(t *testing.T) {
	client, srv := newTestClient(t, 1)

	err := RunCreate(context.Background(), client, types.Draft{Title: "  "}, OutputOptions{Out: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "title, body") {
		t.Fatalf("Expected missing field error, got %v", err)
	}
	if len(srv.GetLogs()) != 0 {
		t.Error("No request should be sent for an invalid draft")
	}
}

func TestRunUpdate(t *testing.T) {
	client, srv := newTestClient(t, 3)

	var out bytes.Buffer
	draft := types.Draft{Title: "Updated Post", Body: "This post has been updated."}
	if err := RunUpdate(context.Background(), client, 2, draft, OutputOptions{Out: &out, Format: FormatJSON}); err != nil {
		t.Fatalf("RunUpdate failed: %v", err)
	}

	if !strings.Contains(out.String(), `"title": "Updated Post"`) {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
	if srv.Posts()[1].Title != "Updated Post" {
		t.Errorf("Server post not updated: %+v", srv.Posts()[1])
	}
}

func TestRunUpdate_NotFound(t *testing.T) {
	client, _ := newTestClient(t, 3)

	err := RunUpdate(context.Background(), client, 99, types.Draft{Title: "a", Body: "b"}, OutputOptions{Out: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "post 99") {
		t.Fatalf("Expected not found error, got %v", err)
	}
}

func TestRunDelete(t *testing.T) {
	client, srv := newTestClient(t, 3)

	var out bytes.Buffer
	if err := RunDelete(context.Background(), client, 2, OutputOptions{Out: &out}); err != nil {
		t.Fatalf("RunDelete failed: %v", err)
	}

	if out.String() != "Deleted post 2\n" {
		t.Errorf("Unexpected output %q", out.String())
	}
	if len(srv.Posts()) != 2 {
		t.Errorf("Expected 2 posts on server, got %d", len(srv.Posts()))
	}
}

func TestRunHistory(t *testing.T) {
	mgr, err := history.NewManager(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	client, _ := newTestClient(t, 3, api.WithRecorder(mgr))
	ctx := context.Background()
	_ = RunList(ctx, client, OutputOptions{Out: &bytes.Buffer{}})
	_ = RunDelete(ctx, client, 3, OutputOptions{Out: &bytes.Buffer{}})

	var out bytes.Buffer
	if err := RunHistory(mgr, HistoryOptions{Limit: 10}, OutputOptions{Out: &out, Format: FormatText}); err != nil {
		t.Fatalf("RunHistory failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 entries, got %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "DELETE") {
		t.Errorf("Newest entry should be the delete, got %q", lines[0])
	}

	out.Reset()
	if err := RunHistory(mgr, HistoryOptions{PostID: 3}, OutputOptions{Out: &out, Format: FormatJSON}); err != nil {
		t.Fatalf("RunHistory failed: %v", err)
	}
	if !strings.Contains(out.String(), `"operation": "delete"`) || strings.Contains(out.String(), `"operation": "list"`) {
		t.Errorf("Unexpected post history:\n%s", out.String())
	}

	out.Reset()
	if err := RunHistory(mgr, HistoryOptions{Clear: true}, OutputOptions{Out: &out}); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, _ := mgr.Load(0)
	if len(entries) != 0 {
		t.Errorf("Expected empty history, got %d", len(entries))
	}
}

func TestRunStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	mgr, err := history.NewManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	client, srv := newTestClient(t, 2, api.WithRecorder(mgr))
	srv.FailNext(http.MethodDelete, http.StatusInternalServerError)
	ctx := context.Background()
	_ = RunList(ctx, client, OutputOptions{Out: &bytes.Buffer{}})
	_ = RunDelete(ctx, client, 1, OutputOptions{Out: &bytes.Buffer{}})

	stats, err := analytics.NewManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to open analytics: %v", err)
	}
	t.Cleanup(func() { stats.Close() })

	var out bytes.Buffer
	if err := RunStats(stats, OutputOptions{Out: &out, Format: FormatText}); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "OP") {
		t.Errorf("Expected header row, got:\n%s", out.String())
	}
	for _, w := range []string{"list", "delete", "100.0%", "0.0%"} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("Output missing %q:\n%s", w, out.String())
		}
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"", FormatJSON, FormatYAML, FormatText} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	if err := ValidateFormat("xml"); err == nil {
		t.Error("Expected error for xml")
	}
}

func TestPrintResult_Highlight(t *testing.T) {
	var out bytes.Buffer
	opts := OutputOptions{Out: &out, Format: FormatJSON, Color: true}
	if err := printResult(context.Background(), types.Post{ID: 1, Title: "t", Body: "b"}, opts); err != nil {
		t.Fatalf("printResult failed: %v", err)
	}
	if !strings.Contains(out.String(), "\x1b[") {
		t.Error("Expected ANSI escape codes in highlighted output")
	}
}

func TestPromptField(t *testing.T) {
	var prompt bytes.Buffer
	got, err := PromptField(strings.NewReader("  My title \n"), &prompt, "title")
	if err != nil {
		t.Fatalf("PromptField failed: %v", err)
	}
	if got != "My title" {
		t.Errorf("PromptField() = %q", got)
	}
	if prompt.String() != "Enter title: " {
		t.Errorf("Unexpected prompt %q", prompt.String())
	}

	if _, err := PromptField(strings.NewReader(""), &prompt, "body"); err == nil {
		t.Error("Expected error on empty input")
	}
}

func TestSelector_PicksHighlightedPost(t *testing.T) {
	m := newSelector("Pick", mock.SeedPosts(3))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.(selectorModel).Update(tea.KeyMsg{Type: tea.KeyEnter})

	result := next.(selectorModel)
	if result.choice == nil || result.choice.ID != 2 {
		t.Fatalf("Expected post 2, got %+v", result.choice)
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}
}

func TestSelector_Cancel(t *testing.T) {
	m := newSelector("Pick", mock.SeedPosts(3))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if next.(selectorModel).choice != nil {
		t.Error("Expected no choice after cancel")
	}
}
