package workflow

import (
	"fmt"
	"io"
	"log/slog"

	"tubeinsight/internal/acquisition"
	"tubeinsight/internal/config"
	"tubeinsight/internal/discovery"
	"tubeinsight/internal/notifications"
	"tubeinsight/internal/registry"
	"tubeinsight/internal/services/llm"
	"tubeinsight/internal/summarize"
	"tubeinsight/internal/youtube"
)

// NewRunner wires production collaborators from configuration. The returned
// closer releases the registry backend.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, io.Closer, error) {
	if err := cfg.RequireYouTube(); err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireLLM(); err != nil {
		return nil, nil, err
	}
	store, closer, err := registry.Open(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open registry: %w", err)
	}

	search := youtube.NewClient(cfg.YouTube.APIKey,
		youtube.WithBaseURL(cfg.YouTube.BaseURL),
		youtube.WithRateLimit(cfg.YouTube.RequestsPerSecond),
	)
	finder := discovery.New(search, logger,
		discovery.WithWindowDays(cfg.YouTube.WindowDays),
		discovery.WithMaxResults(cfg.YouTube.MaxResults),
	)
	runner := New(Dependencies{
		Registry:   store,
		Finder:     finder,
		Acquirer:   acquisition.NewFromConfig(cfg, logger),
		Summarizer: newSummarizer(cfg, logger),
		Notifier:   notifications.NewService(cfg),
	}, Settings{
		ReportDir:  cfg.Paths.ReportDir,
		WindowDays: cfg.YouTube.WindowDays,
	}, logger)
	return runner, closer, nil
}

// newSummarizer builds the report summarizer. A failed completion is reported
// once as a failure outcome; the call is never retried.
func newSummarizer(cfg *config.Config, logger *slog.Logger) *summarize.Summarizer {
	completer := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(1))
	return summarize.New(completer, cfg.LLM.MaxTranscriptChars, cfg.Captions.TargetLanguage, logger)
}
