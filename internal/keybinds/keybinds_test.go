package keybinds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
	}{
		{ContextList, "j", ActionNavigateDown},
		{ContextList, "e", ActionEditPost},
		{ContextList, "enter", ActionEditPost},
		{ContextList, "d", ActionDeletePost},
		{ContextList, "ctrl+c", ActionQuitForce}, // falls through to global
		{ContextForm, "ctrl+s", ActionSubmit},
		{ContextForm, "esc", ActionCancelEdit},
		{ContextSearch, "enter", ActionSearchConfirm},
		{ContextHelp, "q", ActionCloseModal},
	}

	for _, tt := range tests {
		t.Run(string(tt.context)+"/"+tt.key, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if !ok {
				t.Fatalf("No binding for %q in %s", tt.key, tt.context)
			}
			if got != tt.want {
				t.Errorf("Match() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMatch_FormDoesNotCaptureLetters(t *testing.T) {
	r := NewDefaultRegistry()

	for _, key := range []string{"e", "d", "q", "j"} {
		if action, ok := r.Match(ContextForm, key); ok {
			t.Errorf("Key %q in form context should reach the input, got %s", key, action)
		}
	}
}

func TestMatchMultiKey_GG(t *testing.T) {
	r := NewDefaultRegistry()

	_, complete, partial := r.MatchMultiKey(ContextList, "g")
	if complete || !partial {
		t.Fatalf("Expected partial match for first g, got complete=%v partial=%v", complete, partial)
	}

	action, complete, _ := r.MatchMultiKey(ContextList, "g")
	if !complete || action != ActionGoToTop {
		t.Errorf("Expected go_to_top, got %s (complete=%v)", action, complete)
	}
}

func TestMatchMultiKey_BrokenSequence(t *testing.T) {
	r := NewDefaultRegistry()

	r.MatchMultiKey(ContextList, "g")
	action, complete, partial := r.MatchMultiKey(ContextList, "x")
	if complete || partial || action != "" {
		t.Errorf("Expected no match, got %s complete=%v partial=%v", action, complete, partial)
	}

	// State is cleared, so a single key matches again
	action, complete, _ = r.MatchMultiKey(ContextList, "j")
	if !complete || action != ActionNavigateDown {
		t.Errorf("Expected navigate_down after reset, got %s", action)
	}
}

func TestGetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextList, ActionEditPost); got != "e/enter" {
		t.Errorf("GetBindingString = %q, want e/enter", got)
	}
	if got := r.GetBindingString(ContextList, ActionSubmit); got != "ctrl+s" {
		t.Errorf("Expected global fallback ctrl+s, got %q", got)
	}
	if got := r.GetBindingString(ContextHelp, ActionDeletePost); got != "unbound" {
		t.Errorf("Expected unbound, got %q", got)
	}
}

func TestApplyConfig_Rebinds(t *testing.T) {
	r := NewDefaultRegistry()
	cfg := &Config{
		List: map[string]string{"delete_post": "x, X"},
	}

	if err := ApplyConfig(r, cfg); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}

	if _, ok := r.Match(ContextList, "d"); ok {
		t.Error("Default key d should be unbound after override")
	}
	for _, key := range []string{"x", "X"} {
		if action, _ := r.Match(ContextList, key); action != ActionDeletePost {
			t.Errorf("Key %q = %s, want delete_post", key, action)
		}
	}
}

func TestApplyConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "unknown action", cfg: &Config{List: map[string]string{"launch": "l"}}},
		{name: "empty keys", cfg: &Config{List: map[string]string{"refresh": " , "}}},
		{name: "force quit", cfg: &Config{Global: map[string]string{"quit_force": "ctrl+q"}}},
		{name: "force quit key in global", cfg: &Config{Global: map[string]string{"refresh": "ctrl+c"}}},
		{name: "force quit key in list", cfg: &Config{List: map[string]string{"refresh": "r,ctrl+c"}}},
		{name: "force quit key in form", cfg: &Config{Form: map[string]string{"submit": "ctrl+c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ApplyConfig(NewDefaultRegistry(), tt.cfg); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestApplyConfig_KeepsForceQuitKey(t *testing.T) {
	r := NewDefaultRegistry()
	cfg := &Config{Global: map[string]string{"refresh": "ctrl+c"}}

	if err := ApplyConfig(r, cfg); err == nil {
		t.Fatal("Expected error when taking over ctrl+c")
	}
	for _, ctx := range []Context{ContextGlobal, ContextList, ContextForm, ContextSearch, ContextHelp} {
		if action, _ := r.Match(ctx, "ctrl+c"); action != ActionQuitForce {
			t.Errorf("ctrl+c in %s = %s, want quit_force", ctx, action)
		}
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	r, err := LoadOrDefault(filepath.Join(dir, "missing.jsonc"))
	if err != nil {
		t.Fatalf("Missing file should fall back to defaults, got %v", err)
	}
	if action, _ := r.Match(ContextList, "r"); action != ActionRefresh {
		t.Errorf("Expected default refresh binding, got %s", action)
	}

	path := filepath.Join(dir, "keybinds.jsonc")
	content := `{
		// vim-ish refresh
		"version": "1.0",
		"list": {
			"refresh": "R",
		},
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write keybinds: %v", err)
	}

	r, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if action, _ := r.Match(ContextList, "R"); action != ActionRefresh {
		t.Errorf("Expected R to refresh, got %s", action)
	}

	if err := os.WriteFile(path, []byte(`{"list": {"refresh": 5}}`), 0644); err != nil {
		t.Fatalf("Failed to write keybinds: %v", err)
	}
	if _, err := LoadOrDefault(path); err == nil {
		t.Error("Expected error for invalid keybinds file")
	}
}
