package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working, report, and log directories.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	ReportDir string `toml:"report_dir"`
	LogDir    string `toml:"log_dir"`
}

// YouTube contains Data API settings for channel and video search.
type YouTube struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	WindowDays        int     `toml:"window_days"`
	MaxResults        int     `toml:"max_results"`
}

// Captions contains caption language preferences.
type Captions struct {
	TargetLanguage   string `toml:"target_language"`
	FallbackLanguage string `toml:"fallback_language"`
	WatchBaseURL     string `toml:"watch_base_url"`
}

// Audio contains the audio download and speech-to-text fallback settings.
type Audio struct {
	Enabled             bool   `toml:"enabled"`
	YtDlpBinary         string `toml:"ytdlp_binary"`
	WhisperXModel       string `toml:"whisperx_model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	WhisperXVADMethod   string `toml:"whisperx_vad_method"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// LLM contains chat-completion connection settings used for summarization.
type LLM struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	Model              string `toml:"model"`
	Referer            string `toml:"referer"`
	Title              string `toml:"title"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	MaxTranscriptChars int    `toml:"max_transcript_chars"`
}

// Registry selects where the channel registry document is stored.
type Registry struct {
	Backend      string `toml:"backend"`
	Path         string `toml:"path"`
	Format       string `toml:"format"`
	GitHubOwner  string `toml:"github_owner"`
	GitHubRepo   string `toml:"github_repo"`
	GitHubBranch string `toml:"github_branch"`
	GitHubToken  string `toml:"github_token"`
	GitHubAPIURL string `toml:"github_api_url"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tubeinsight.
//
// Configuration sections by subsystem:
//   - Paths: transient work area, report output, and logs
//   - YouTube: search API access and the recency window
//   - Captions: preferred and fallback caption languages
//   - Audio: yt-dlp download and WhisperX transcription fallback
//   - LLM: chat-completion settings for insight generation
//   - Registry: channel registry storage backend
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	Captions      Captions      `toml:"captions"`
	Audio         Audio         `toml:"audio"`
	LLM           LLM           `toml:"llm"`
	Registry      Registry      `toml:"registry"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tubeinsight/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("tubeinsight.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the work, report, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.ReportDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AudioTimeout returns the ceiling for one download plus transcription attempt.
func (c *Config) AudioTimeout() time.Duration {
	return time.Duration(c.Audio.TimeoutSeconds) * time.Second
}

// WhisperXBinary returns the launcher used to run WhisperX.
func (c *Config) WhisperXBinary() string {
	return "uvx"
}

// FFmpegBinary returns the ffmpeg executable used to normalize downloaded audio.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
