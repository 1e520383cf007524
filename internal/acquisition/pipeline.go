package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"tubeinsight/internal/captions"
	"tubeinsight/internal/logging"
	"tubeinsight/internal/services"
)

// Pipeline runs the caption → translation → audio fallback chain.
type Pipeline struct {
	captions     CaptionSource
	downloader   AudioDownloader
	transcriber  Transcriber
	target       string
	fallback     string
	workRoot     string
	audioTimeout time.Duration
	logger       *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithAudio enables the audio-transcription stage.
func WithAudio(downloader AudioDownloader, transcriber Transcriber) Option {
	return func(p *Pipeline) {
		p.downloader = downloader
		p.transcriber = transcriber
	}
}

// WithLanguages sets the report language and the preferred translation source.
func WithLanguages(target, fallback string) Option {
	return func(p *Pipeline) {
		if target = strings.TrimSpace(target); target != "" {
			p.target = target
		}
		p.fallback = strings.TrimSpace(fallback)
	}
}

// WithWorkRoot sets the parent directory for per-call temporary directories.
// Empty uses the system temp dir.
func WithWorkRoot(dir string) Option {
	return func(p *Pipeline) {
		p.workRoot = dir
	}
}

// WithAudioTimeout bounds the download plus transcription stage.
func WithAudioTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.audioTimeout = d
	}
}

// New builds a pipeline over the given caption source. Without WithAudio the
// chain ends after the translation stage.
func New(source CaptionSource, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		captions: source,
		target:   "ko",
		fallback: "en",
		logger:   logging.NewComponentLogger(logger, "acquisition"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns the first transcript any stage produces. It never returns an
// error: exhaustion is reported as Result{Provenance: ProvenanceNone}.
func (p *Pipeline) Acquire(ctx context.Context, videoID string, onProgress ProgressFunc) Result {
	videoID = strings.TrimSpace(videoID)
	ctx = services.WithVideoID(ctx, videoID)
	logger := logging.WithContext(ctx, p.logger)
	if videoID == "" {
		return Result{Provenance: ProvenanceNone}
	}

	type stage struct {
		name       Stage
		message    string
		provenance Provenance
		run        func(context.Context, string) (string, error)
	}
	stages := []stage{
		{StageNativeCaption, "fetching " + p.target + " captions", ProvenanceNativeCaption, p.nativeCaption},
		{StageTranslatedCaption, "no " + p.target + " captions; trying translation", ProvenanceTranslatedCaption, p.translatedCaption},
	}
	if p.downloader != nil && p.transcriber != nil {
		stages = append(stages, stage{StageAudioTranscription, "no usable captions; extracting audio", ProvenanceAudioTranscription, p.audioTranscription})
	}

	for _, st := range stages {
		if onProgress != nil {
			onProgress(Progress{VideoID: videoID, Stage: st.name, Message: st.message})
		}
		stageCtx := services.WithStage(ctx, string(st.name))
		started := time.Now()
		text, err := st.run(stageCtx, videoID)
		if err == nil {
			text = strings.TrimSpace(text)
		}
		if err == nil && text == "" {
			err = errors.New("stage produced empty text")
		}
		if err != nil {
			logging.WarnWithContext(logging.WithContext(stageCtx, p.logger), "acquisition stage failed",
				"acquisition_stage_failed", "falling back to next stage",
				logging.Error(err),
				logging.Duration("elapsed", time.Since(started)),
			)
			continue
		}
		logger.Info("transcript acquired",
			logging.String("provenance", string(st.provenance)),
			logging.Int("chars", len([]rune(text))),
			logging.Duration("elapsed", time.Since(started)),
		)
		return Result{Text: text, Provenance: st.provenance}
	}

	logging.WarnWithContext(logger, "all acquisition stages failed",
		"acquisition_exhausted", "no transcript; manual upload required")
	return Result{Provenance: ProvenanceNone}
}

func (p *Pipeline) nativeCaption(ctx context.Context, videoID string) (string, error) {
	tracks, err := p.captions.Tracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	track, ok := captions.SelectTrack(tracks, []string{p.target})
	if !ok {
		return "", fmt.Errorf("%w: wanted %s", captions.ErrLanguageUnavailable, p.target)
	}
	transcript, err := p.captions.FetchTrack(ctx, track)
	if err != nil {
		return "", err
	}
	return transcript.Text(), nil
}

func (p *Pipeline) translatedCaption(ctx context.Context, videoID string) (string, error) {
	tracks, err := p.captions.Tracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", captions.ErrNoCaptions
	}
	source := tracks[0]
	if p.fallback != "" {
		if preferred, ok := captions.SelectTrack(tracks, []string{p.fallback}); ok {
			source = preferred
		}
	}
	transcript, err := p.captions.Translate(ctx, source, p.target)
	if err != nil {
		return "", err
	}
	return transcript.Text(), nil
}

func (p *Pipeline) audioTranscription(ctx context.Context, videoID string) (string, error) {
	if p.audioTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.audioTimeout)
		defer cancel()
	}

	if p.workRoot != "" {
		if err := os.MkdirAll(p.workRoot, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, string(StageAudioTranscription), "work dir", "ensure work root", err)
		}
	}
	dir, err := os.MkdirTemp(p.workRoot, "acquire-*")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, string(StageAudioTranscription), "work dir", "create temp dir", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			p.logger.Error("remove audio artifact", logging.String("path", dir), logging.Error(rmErr))
		}
	}()

	audioPath, err := p.downloader.DownloadAudio(ctx, videoID, dir)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, string(StageAudioTranscription), "download", "", err)
	}
	// The spoken language is unknown here; WhisperX detects it.
	result, err := p.transcriber.Transcribe(ctx, audioPath, dir, "")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, string(StageAudioTranscription), "transcribe", "", err)
	}
	return result.Text, nil
}
