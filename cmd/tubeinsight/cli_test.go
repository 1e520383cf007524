package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tubeinsight/internal/config"
	"tubeinsight/internal/registry"
	"tubeinsight/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *httptest.Server
	llmCalls   atomic.Int32
}

// setupCLITestEnv serves the search API, a caption-less watch page and a chat
// completion endpoint from one test server.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("type") {
		case "channel":
			if strings.Contains(q.Get("q"), "nobody") {
				_, _ = w.Write([]byte(`{"items":[]}`))
				return
			}
			_, _ = w.Write([]byte(`{"items":[{"id":{"kind":"youtube#channel","channelId":"UC_ALPHA"},` +
				`"snippet":{"channelId":"UC_ALPHA","title":"Alpha Labs","customUrl":"@alpha"}}]}`))
		case "video":
			published := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
			_, _ = w.Write([]byte(`{"items":[{"id":{"kind":"youtube#video","videoId":"vid123"},` +
				`"snippet":{"channelId":"UC_ALPHA","title":"Agents in production","channelTitle":"Alpha Labs","publishedAt":"` + published + `"}}]}`))
		default:
			http.Error(w, "unexpected type", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>no player here</body></html>"))
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		env.llmCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "1. Agents ship value."}}},
		})
	})
	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	t.Setenv("HOME", t.TempDir())
	opts = append([]testsupport.ConfigOption{
		testsupport.WithYouTubeBaseURL(env.server.URL),
		testsupport.WithLLMBaseURL(env.server.URL + "/chat"),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Captions.WatchBaseURL = env.server.URL
	cfg.YouTube.RequestsPerSecond = 1000
	env.cfg = cfg
	env.configPath = filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...))
}

func runCLI(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Registry: file (json)")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
}

func TestChannelsLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "channels", "list")
	if err != nil {
		t.Fatalf("channels list: %v", err)
	}
	requireContains(t, out, "No channels registered")

	out, _, err = env.run(t, "channels", "add", "https://www.youtube.com/@alpha")
	if err != nil {
		t.Fatalf("channels add: %v", err)
	}
	requireContains(t, out, "Added Alpha Labs")
	requireContains(t, out, "1 of 15 channels registered")

	out, _, err = env.run(t, "channels", "list")
	if err != nil {
		t.Fatalf("channels list: %v", err)
	}
	requireContains(t, out, "UC_ALPHA")
	requireContains(t, out, "@alpha")

	if _, _, err := env.run(t, "channels", "add", "@alpha"); err == nil {
		t.Fatal("expected duplicate add to fail")
	}

	out, _, err = env.run(t, "channels", "edit", "1", "@alpha")
	if err != nil {
		t.Fatalf("channels edit: %v", err)
	}
	requireContains(t, out, "Channel #1 is now Alpha Labs")

	out, _, err = env.run(t, "channels", "remove", "1")
	if err != nil {
		t.Fatalf("channels remove: %v", err)
	}
	requireContains(t, out, "Removed channel #1; 0 remaining")
}

func TestChannelsOnSQLiteBackend(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithRegistryBackend("sqlite"))

	if _, _, err := env.run(t, "channels", "add", "@alpha"); err != nil {
		t.Fatalf("channels add: %v", err)
	}
	snap, err := testsupport.MustOpenRegistry(t, env.cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].ID != "UC_ALPHA" {
		t.Fatalf("unexpected registry content: %+v", snap.Entries)
	}
}

func TestPreflightWithStubbedBinaries(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAudio(), testsupport.WithStubbedBinaries())

	out, _, err := env.run(t, "preflight", "--skip-llm")
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, out)
	}
	requireContains(t, out, "yt-dlp")
	requireContains(t, out, "All required checks passed")
}

func TestChannelsListSurvivesUnreadableRegistry(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.Registry.Path, "{not json")

	out, errOut, err := env.run(t, "channels", "list")
	if err != nil {
		t.Fatalf("channels list: %v", err)
	}
	requireContains(t, out, "No channels registered")
	requireContains(t, errOut, "channel registry unavailable")
}

func TestChannelsRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := env.run(t, "channels", "remove", "0"); err == nil || !strings.Contains(err.Error(), "invalid channel number") {
		t.Fatalf("expected invalid index error, got %v", err)
	}
	if _, _, err := env.run(t, "channels", "remove", "3"); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range error, got %v", err)
	}
	_, _, err := env.run(t, "channels", "add", "nobody")
	if err == nil || !strings.Contains(err.Error(), "check the channel handle or URL") {
		t.Fatalf("expected not found hint, got %v", err)
	}
}

func TestLatestShowsNewestVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "latest", "UC_ALPHA", "--days", "3")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	requireContains(t, out, "Agents in production")
	requireContains(t, out, "vid123")
}

func TestTranscriptFallsBackToManualFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "transcript", "vid123")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	requireContains(t, out, "No transcript available for vid123")

	manual := testsupport.WriteText(t, filepath.Join(t.TempDir(), "vid123.txt"), "hand typed transcript")
	out, stderr, err := env.run(t, "transcript", "vid123", "--manual-file", manual)
	if err != nil {
		t.Fatalf("transcript with manual file: %v", err)
	}
	requireContains(t, out, "Source: manual upload")
	requireContains(t, out, "hand typed transcript")
	if stderr == "" {
		t.Fatal("expected progress lines on stderr")
	}
}

func TestReportRunWithManualTranscript(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.SeedRegistry(t, env.cfg, registry.ChannelEntry{Name: "Alpha Labs", Handle: "@alpha", ID: "UC_ALPHA"})

	out, _, err := env.run(t, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "0 videos analyzed, 1 channels skipped")
	requireContains(t, out, "--manual-file vid123=PATH")

	manual := testsupport.WriteText(t, filepath.Join(t.TempDir(), "t.txt"), "transcript body")
	target := filepath.Join(t.TempDir(), "out.md")
	out, _, err = env.run(t, "report", "--manual-file", "vid123="+manual, "--output", target)
	if err != nil {
		t.Fatalf("report with manual file: %v", err)
	}
	requireContains(t, out, "1 videos analyzed")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	requireContains(t, string(data), "Agents ship value.")
	requireContains(t, string(data), "manual upload")
	if got := env.llmCalls.Load(); got != 1 {
		t.Fatalf("expected one completion call, got %d", got)
	}
}

func TestReportRejectsMalformedManualFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "report", "--manual-file", "no-separator")
	if err == nil || !strings.Contains(err.Error(), "VIDEO_ID=PATH") {
		t.Fatalf("expected manual flag error, got %v", err)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "1", want: 0},
		{in: " 15 ", want: 14},
		{in: "0", wantErr: true},
		{in: "-2", wantErr: true},
		{in: "two", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseIndex(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseIndex(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("parseIndex(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestProgressLine(t *testing.T) {
	if got := progressLine(2, 5, "Alpha: done", false); got != "[2/5] Alpha: done" {
		t.Fatalf("unexpected progress line %q", got)
	}
	if got := progressLine(0, 0, "fetching", false); !strings.HasSuffix(got, " fetching") {
		t.Fatalf("unexpected progress line %q", got)
	}
}
