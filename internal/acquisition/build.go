package acquisition

import (
	"log/slog"

	"tubeinsight/internal/captions"
	"tubeinsight/internal/config"
	"tubeinsight/internal/services/whisperx"
	"tubeinsight/internal/services/ytdlp"
)

// NewFromConfig wires the caption scraper, yt-dlp and WhisperX from configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Pipeline {
	source := captions.NewClient(logger, captions.WithWatchBaseURL(cfg.Captions.WatchBaseURL))
	opts := []Option{
		WithLanguages(cfg.Captions.TargetLanguage, cfg.Captions.FallbackLanguage),
		WithWorkRoot(cfg.Paths.WorkDir),
	}
	if cfg.Audio.Enabled {
		downloader := ytdlp.New(cfg.Audio.YtDlpBinary, ytdlp.WithWatchBaseURL(cfg.Captions.WatchBaseURL))
		transcriber := whisperx.NewService(whisperx.Config{
			Model:       cfg.Audio.WhisperXModel,
			CUDAEnabled: cfg.Audio.WhisperXCUDAEnabled,
			VADMethod:   cfg.Audio.WhisperXVADMethod,
		}, cfg.FFmpegBinary())
		opts = append(opts, WithAudio(downloader, transcriber), WithAudioTimeout(cfg.AudioTimeout()))
	}
	return New(source, logger, opts...)
}
