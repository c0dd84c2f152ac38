package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/postboard/internal/api"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBaseURL, EnvTimeout, EnvLogLevel, EnvHistory} {
		t.Setenv(key, "")
	}
}

func TestInitialize_UsesHomeOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pb")
	t.Setenv(HomeEnv, dir)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if ConfigDir != dir {
		t.Errorf("ConfigDir = %s, want %s", ConfigDir, dir)
	}
	if DatabasePath != filepath.Join(dir, "postboard.db") {
		t.Errorf("Unexpected DatabasePath %s", DatabasePath)
	}
	if LogFile != filepath.Join(dir, "postboard.log") {
		t.Errorf("Unexpected LogFile %s", LogFile)
	}
	if KeybindsFile != filepath.Join(dir, "keybinds.jsonc") {
		t.Errorf("Unexpected KeybindsFile %s", KeybindsFile)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected config directory to be created: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(HomeEnv, t.TempDir())
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseURL != api.DefaultBaseURL {
		t.Errorf("BaseURL = %s, want %s", cfg.BaseURL, api.DefaultBaseURL)
	}
	if d, _ := cfg.RequestTimeout(); d != api.DefaultTimeout {
		t.Errorf("RequestTimeout = %v, want %v", d, api.DefaultTimeout)
	}
	if !cfg.HistoryEnabled() {
		t.Error("History should be enabled by default")
	}
}

func TestLoad_Formats(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantURL string
		wantErr bool
	}{
		{
			name:    "yaml",
			file:    "config.yaml",
			content: "baseUrl: http://localhost:8080\ntimeout: 5s\nhistory: false\n",
			wantURL: "http://localhost:8080",
		},
		{
			name: "jsonc with comments",
			file: "config.jsonc",
			content: `{
				// local fake API
				"baseUrl": "http://127.0.0.1:9000",
				"timeout": "0",
			}`,
			wantURL: "http://127.0.0.1:9000",
		},
		{
			name:    "json",
			file:    "config.json",
			content: `{"baseUrl": "https://api.example.com"}`,
			wantURL: "https://api.example.com",
		},
		{
			name:    "invalid base url",
			file:    "bad.yaml",
			content: "baseUrl: ftp://example.com\n",
			wantErr: true,
		},
		{
			name:    "invalid timeout",
			file:    "badtimeout.yaml",
			content: "timeout: soon\n",
			wantErr: true,
		},
		{
			name:    "unsupported format",
			file:    "config.toml",
			content: "baseUrl = 'x'",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(path)
			if err == nil {
				err = cfg.ApplyOverrides(Overrides{})
			}
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.BaseURL != tt.wantURL {
				t.Errorf("BaseURL = %s, want %s", cfg.BaseURL, tt.wantURL)
			}
		})
	}
}

func TestLoad_YAMLValues(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", `
baseUrl: http://localhost:8080
timeout: 5s
logLevel: debug
history: false
tls:
  insecureSkipVerify: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if d, _ := cfg.RequestTimeout(); d != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", d)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.HistoryEnabled() {
		t.Error("Expected history disabled")
	}
	if cfg.TLS == nil || !cfg.TLS.InsecureSkipVerify {
		t.Errorf("Expected TLS insecureSkipVerify, got %+v", cfg.TLS)
	}
}

func TestLoad_FindsFileInConfigDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	writeFile(t, dir, "config.yml", "baseUrl: http://found.local\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://found.local" {
		t.Errorf("BaseURL = %s, want http://found.local", cfg.BaseURL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", "baseUrl: http://file.local\ntimeout: 5s\n")
	t.Setenv(EnvBaseURL, "http://env.local")
	t.Setenv(EnvTimeout, "250ms")
	t.Setenv(EnvHistory, "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseURL != "http://env.local" {
		t.Errorf("BaseURL = %s, want env value", cfg.BaseURL)
	}
	if d, _ := cfg.RequestTimeout(); d != 250*time.Millisecond {
		t.Errorf("RequestTimeout = %v, want 250ms", d)
	}
	if cfg.HistoryEnabled() {
		t.Error("Expected env to disable history")
	}
}

func TestApplyOverrides_FixesInvalidFileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "baseUrl: ftp://example.com\ntimeout: soon\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should defer validation, got %v", err)
	}

	err = cfg.ApplyOverrides(Overrides{
		BaseURL:   "http://localhost:8080",
		Timeout:   "5s",
		LogLevel:  "debug",
		NoHistory: true,
	})
	if err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" || cfg.Timeout != "5s" || cfg.LogLevel != "debug" {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if cfg.HistoryEnabled() {
		t.Error("NoHistory should disable the journal")
	}
}

func TestApplyOverrides_Validates(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyOverrides(Overrides{Timeout: "-1s"}); err == nil {
		t.Error("Expected error for negative timeout")
	}

	cfg = Default()
	if err := cfg.ApplyOverrides(Overrides{}); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
}

func TestApplyEnv_InvalidHistory(t *testing.T) {
	cfg := Default()
	lookup := func(key string) (string, bool) {
		if key == EnvHistory {
			return "maybe", true
		}
		return "", false
	}

	if err := applyEnv(cfg, lookup); err == nil {
		t.Error("Expected error for non-boolean history value")
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
		wantErr bool
	}{
		{timeout: "", want: api.DefaultTimeout},
		{timeout: "0", want: 0},
		{timeout: "0s", want: 0},
		{timeout: "1m", want: time.Minute},
		{timeout: "-1s", wantErr: true},
		{timeout: "fast", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			cfg := &Config{Timeout: tt.timeout}
			got, err := cfg.RequestTimeout()
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RequestTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("Missing .env should not be an error, got %v", err)
	}

	path := writeFile(t, dir, ".env", "POSTBOARD_LOG_LEVEL=debug\n")
	os.Unsetenv(EnvLogLevel)
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvLogLevel) })

	if got := os.Getenv(EnvLogLevel); got != "debug" {
		t.Errorf("%s = %q, want debug", EnvLogLevel, got)
	}
}
