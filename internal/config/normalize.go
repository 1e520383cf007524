package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeCaptions()
	c.normalizeAudio()
	c.normalizeLLM()
	if err := c.normalizeRegistry(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = lookupEnv("YOUTUBE_API_KEY")
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.RequestsPerSecond <= 0 {
		c.YouTube.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.YouTube.WindowDays == 0 {
		c.YouTube.WindowDays = defaultWindowDays
	}
	if c.YouTube.MaxResults <= 0 {
		c.YouTube.MaxResults = defaultMaxResults
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.TargetLanguage = strings.TrimSpace(c.Captions.TargetLanguage)
	if c.Captions.TargetLanguage == "" {
		c.Captions.TargetLanguage = defaultTargetLanguage
	}
	c.Captions.FallbackLanguage = strings.TrimSpace(c.Captions.FallbackLanguage)
	if c.Captions.FallbackLanguage == "" {
		c.Captions.FallbackLanguage = defaultFallbackLanguage
	}
	c.Captions.WatchBaseURL = strings.TrimRight(strings.TrimSpace(c.Captions.WatchBaseURL), "/")
	if c.Captions.WatchBaseURL == "" {
		c.Captions.WatchBaseURL = defaultWatchBaseURL
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.YtDlpBinary = strings.TrimSpace(c.Audio.YtDlpBinary)
	if c.Audio.YtDlpBinary == "" {
		c.Audio.YtDlpBinary = defaultYtDlpBinary
	}
	c.Audio.WhisperXModel = strings.TrimSpace(c.Audio.WhisperXModel)
	if c.Audio.WhisperXModel == "" {
		c.Audio.WhisperXModel = defaultWhisperXModel
	}
	c.Audio.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(c.Audio.WhisperXVADMethod))
	if c.Audio.WhisperXVADMethod == "" {
		c.Audio.WhisperXVADMethod = defaultWhisperXVADMethod
	}
	if c.Audio.TimeoutSeconds <= 0 {
		c.Audio.TimeoutSeconds = defaultAudioTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value := lookupEnv("OPENAI_API_KEY"); value != "" {
			c.LLM.APIKey = value
		} else {
			c.LLM.APIKey = lookupEnv("OPENROUTER_API_KEY")
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxTranscriptChars <= 0 {
		c.LLM.MaxTranscriptChars = defaultMaxTranscriptChars
	}
}

func (c *Config) normalizeRegistry() error {
	c.Registry.Backend = strings.ToLower(strings.TrimSpace(c.Registry.Backend))
	if c.Registry.Backend == "" {
		c.Registry.Backend = defaultRegistryBackend
	}
	c.Registry.Format = strings.ToLower(strings.TrimSpace(c.Registry.Format))
	if c.Registry.Format == "" {
		c.Registry.Format = formatFromPath(c.Registry.Path)
	}
	c.Registry.Path = strings.TrimSpace(c.Registry.Path)
	if c.Registry.Backend == "github" {
		// Repository-relative; local-looking paths fall back to the repo root.
		if c.Registry.Path == "" || strings.HasPrefix(c.Registry.Path, "~") || strings.HasPrefix(c.Registry.Path, "/") {
			c.Registry.Path = "channels." + c.Registry.Format
		}
	} else {
		if c.Registry.Path == "" {
			c.Registry.Path = defaultRegistryPath
		}
		var err error
		if c.Registry.Path, err = expandPath(c.Registry.Path); err != nil {
			return fmt.Errorf("registry.path: %w", err)
		}
	}
	c.Registry.GitHubOwner = strings.TrimSpace(c.Registry.GitHubOwner)
	c.Registry.GitHubRepo = strings.TrimSpace(c.Registry.GitHubRepo)
	c.Registry.GitHubBranch = strings.TrimSpace(c.Registry.GitHubBranch)
	if c.Registry.GitHubBranch == "" {
		c.Registry.GitHubBranch = defaultGitHubBranch
	}
	c.Registry.GitHubAPIURL = strings.TrimRight(strings.TrimSpace(c.Registry.GitHubAPIURL), "/")
	if c.Registry.GitHubAPIURL == "" {
		c.Registry.GitHubAPIURL = defaultGitHubAPIURL
	}
	c.Registry.GitHubToken = strings.TrimSpace(c.Registry.GitHubToken)
	if c.Registry.GitHubToken == "" {
		c.Registry.GitHubToken = lookupEnv("GITHUB_TOKEN")
	}
	return nil
}

func formatFromPath(path string) string {
	lower := strings.ToLower(strings.TrimSpace(path))
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return "yaml"
	}
	return defaultRegistryFormat
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lookupEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
