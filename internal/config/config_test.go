package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubeinsight/internal/config"
)

func clearSecrets(t *testing.T) {
	t.Helper()
	for _, key := range []string{"YOUTUBE_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY", "GITHUB_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	clearSecrets(t)
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "tubeinsight", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.YouTube.APIKey != "yt-key" {
		t.Fatalf("expected YouTube key from env, got %q", cfg.YouTube.APIKey)
	}
	if cfg.LLM.APIKey != "or-key" {
		t.Fatalf("expected LLM key from OPENROUTER_API_KEY, got %q", cfg.LLM.APIKey)
	}
	if cfg.YouTube.WindowDays != 7 {
		t.Fatalf("expected 7 day window, got %d", cfg.YouTube.WindowDays)
	}
	if cfg.LLM.MaxTranscriptChars != 15000 {
		t.Fatalf("expected 15000 char ceiling, got %d", cfg.LLM.MaxTranscriptChars)
	}
	if cfg.Registry.Backend != "file" || cfg.Registry.Format != "json" {
		t.Fatalf("unexpected registry defaults: %+v", cfg.Registry)
	}
	if !filepath.IsAbs(cfg.Registry.Path) {
		t.Fatalf("expected absolute registry path, got %q", cfg.Registry.Path)
	}
	if cfg.Captions.TargetLanguage != "ko" || cfg.Captions.FallbackLanguage != "en" {
		t.Fatalf("unexpected caption languages: %+v", cfg.Captions)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.ReportDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearSecrets(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "tubeinsight.toml")
	body := `
[youtube]
api_key = "abc"
window_days = 3

[registry]
backend = "sqlite"
path = "` + filepath.Join(dir, "registry.db") + `"
format = "yaml"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.YouTube.WindowDays != 3 {
		t.Fatalf("expected window 3, got %d", cfg.YouTube.WindowDays)
	}
	if cfg.Registry.Backend != "sqlite" || cfg.Registry.Format != "yaml" {
		t.Fatalf("unexpected registry: %+v", cfg.Registry)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
}

func TestRegistryFormatInferredFromPath(t *testing.T) {
	clearSecrets(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[registry]\npath = \"" + filepath.Join(dir, "channels.yaml") + "\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Registry.Format != "yaml" {
		t.Fatalf("expected yaml format, got %q", cfg.Registry.Format)
	}
}

func TestGitHubRegistryPathIsRepositoryRelative(t *testing.T) {
	clearSecrets(t)
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "default path",
			body: "[registry]\nbackend = \"github\"\n",
			want: "channels.json",
		},
		{
			name: "yaml format",
			body: "[registry]\nbackend = \"github\"\nformat = \"yaml\"\n",
			want: "channels.yaml",
		},
		{
			name: "home path",
			body: "[registry]\nbackend = \"github\"\npath = \"~/channels.json\"\n",
			want: "channels.json",
		},
		{
			name: "repository path kept",
			body: "[registry]\nbackend = \"github\"\npath = \"data/channels.json\"\n",
			want: "data/channels.json",
		},
	}
	const repo = "github_owner = \"o\"\ngithub_repo = \"r\"\ngithub_token = \"x\"\n"
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("config-%d.toml", i))
			if err := os.WriteFile(path, []byte(tc.body+repo), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			cfg, _, _, err := config.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Registry.Path != tc.want {
				t.Fatalf("registry path = %q, want %q", cfg.Registry.Path, tc.want)
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"window", func(c *config.Config) { c.YouTube.WindowDays = -1 }, "window_days"},
		{"backend", func(c *config.Config) { c.Registry.Backend = "s3" }, "registry.backend"},
		{"format", func(c *config.Config) { c.Registry.Format = "xml" }, "registry.format"},
		{"github", func(c *config.Config) { c.Registry.Backend = "github" }, "github_owner"},
		{"github token", func(c *config.Config) {
			c.Registry.Backend = "github"
			c.Registry.GitHubOwner = "o"
			c.Registry.GitHubRepo = "r"
		}, "github_token"},
		{"vad", func(c *config.Config) { c.Audio.WhisperXVADMethod = "webrtc" }, "whisperx_vad_method"},
		{"ceiling", func(c *config.Config) { c.LLM.MaxTranscriptChars = 10 }, "max_transcript_chars"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireYouTube(); err == nil {
		t.Fatal("expected missing youtube key error")
	}
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected missing llm key error")
	}
	cfg.YouTube.APIKey = "k"
	cfg.LLM.APIKey = "k"
	if err := cfg.RequireYouTube(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	clearSecrets(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample should load: exists=%v err=%v", exists, err)
	}
}
