package config

const (
	defaultWorkDir              = "~/.local/share/tubeinsight/work"
	defaultReportDir            = "~/.local/share/tubeinsight/reports"
	defaultLogDir               = "~/.local/share/tubeinsight/logs"
	defaultYouTubeBaseURL       = "https://www.googleapis.com/youtube/v3"
	defaultRequestsPerSecond    = 5.0
	defaultWindowDays           = 7
	defaultMaxResults           = 1
	defaultTargetLanguage       = "ko"
	defaultFallbackLanguage     = "en"
	defaultWatchBaseURL         = "https://www.youtube.com"
	defaultYtDlpBinary          = "yt-dlp"
	defaultWhisperXModel        = "large-v3-turbo"
	defaultWhisperXVADMethod    = "silero"
	defaultAudioTimeoutSeconds  = 1800
	defaultLLMBaseURL           = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel             = "gpt-4o"
	defaultLLMReferer           = "https://github.com/tubeinsight/tubeinsight"
	defaultLLMTitle             = "tubeinsight"
	defaultLLMTimeoutSeconds    = 120
	defaultMaxTranscriptChars   = 15000
	defaultRegistryBackend      = "file"
	defaultRegistryPath         = "~/.local/share/tubeinsight/channels.json"
	defaultRegistryFormat       = "json"
	defaultGitHubBranch         = "main"
	defaultGitHubAPIURL         = "https://api.github.com"
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			ReportDir: defaultReportDir,
			LogDir:    defaultLogDir,
		},
		YouTube: YouTube{
			BaseURL:           defaultYouTubeBaseURL,
			RequestsPerSecond: defaultRequestsPerSecond,
			WindowDays:        defaultWindowDays,
			MaxResults:        defaultMaxResults,
		},
		Captions: Captions{
			TargetLanguage:   defaultTargetLanguage,
			FallbackLanguage: defaultFallbackLanguage,
			WatchBaseURL:     defaultWatchBaseURL,
		},
		Audio: Audio{
			Enabled:           true,
			YtDlpBinary:       defaultYtDlpBinary,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
			TimeoutSeconds:    defaultAudioTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:            defaultLLMBaseURL,
			Model:              defaultLLMModel,
			Referer:            defaultLLMReferer,
			Title:              defaultLLMTitle,
			TimeoutSeconds:     defaultLLMTimeoutSeconds,
			MaxTranscriptChars: defaultMaxTranscriptChars,
		},
		Registry: Registry{
			Backend:      defaultRegistryBackend,
			Path:         defaultRegistryPath,
			Format:       defaultRegistryFormat,
			GitHubBranch: defaultGitHubBranch,
			GitHubAPIURL: defaultGitHubAPIURL,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
