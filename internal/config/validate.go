package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateRegistry(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateYouTube() error {
	if c.YouTube.WindowDays < 1 {
		return errors.New("youtube.window_days must be at least 1")
	}
	if c.YouTube.MaxResults > 50 {
		return errors.New("youtube.max_results must be 50 or less")
	}
	return nil
}

func (c *Config) validateAudio() error {
	switch c.Audio.WhisperXVADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("audio.whisperx_vad_method: unsupported value %q (use silero or pyannote)", c.Audio.WhisperXVADMethod)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.MaxTranscriptChars < 100 {
		return errors.New("llm.max_transcript_chars must be at least 100")
	}
	return nil
}

func (c *Config) validateRegistry() error {
	switch c.Registry.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("registry.format: unsupported value %q (use json or yaml)", c.Registry.Format)
	}
	switch c.Registry.Backend {
	case "file", "sqlite":
		if strings.TrimSpace(c.Registry.Path) == "" {
			return fmt.Errorf("registry.path must be set for the %s backend", c.Registry.Backend)
		}
	case "github":
		if c.Registry.GitHubOwner == "" || c.Registry.GitHubRepo == "" {
			return errors.New("registry.github_owner and registry.github_repo must be set for the github backend")
		}
		if c.Registry.GitHubToken == "" {
			return errors.New("registry.github_token is required for the github backend (or set GITHUB_TOKEN)")
		}
	default:
		return fmt.Errorf("registry.backend: unsupported value %q (use file, sqlite, or github)", c.Registry.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

// RequireYouTube reports whether search credentials are present. Commands that
// talk to the search API call it; registry-only commands do not.
func (c *Config) RequireYouTube() error {
	if c.YouTube.APIKey == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			path = "~/.config/tubeinsight/config.toml"
		}
		return fmt.Errorf("youtube.api_key is required. Set YOUTUBE_API_KEY env var or edit %s (create with 'tubeinsight config init')", path)
	}
	return nil
}

// RequireLLM reports whether summarization credentials are present.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required. Set OPENAI_API_KEY or OPENROUTER_API_KEY, or edit the config file")
	}
	return nil
}
