package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tubeinsight/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The registry uses the file backend inside the temp tree, audio fallback is
// disabled, and the API keys hold placeholder values.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.ReportDir = filepath.Join(base, "reports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.YouTube.APIKey = "test-youtube"
	cfgVal.LLM.APIKey = "test-llm"
	cfgVal.Audio.Enabled = false
	cfgVal.Registry.Backend = "file"
	cfgVal.Registry.Path = filepath.Join(base, "channels.json")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRegistryBackend switches the registry backend. Local backends keep
// their document under the temp tree.
func WithRegistryBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.Backend = backend
		switch backend {
		case "sqlite":
			b.cfg.Registry.Path = filepath.Join(b.baseDir, "registry.db")
		case "file":
			b.cfg.Registry.Path = filepath.Join(b.baseDir, "channels."+b.cfg.Registry.Format)
		}
	}
}

// WithYouTubeBaseURL points the Data API client at a test server.
func WithYouTubeBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.BaseURL = url
	}
}

// WithLLMBaseURL points the chat completion client at a test server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithAudio enables the audio fallback.
func WithAudio() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.Enabled = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the audio fallback binaries are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "uvx", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
