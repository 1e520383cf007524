package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// ErrEmptyTranscript is returned when WhisperX finishes without producing text.
var ErrEmptyTranscript = errors.New("whisperx produced no text")

// CommandRunner executes an external binary to completion.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	uvxBinary     string
	commandRunner CommandRunner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, ffmpegBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
		uvxBinary:    UVXCommand,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	s.commandRunner = runner
}

// Model returns the model passed to WhisperX.
func (s *Service) Model() string {
	return s.cfg.model()
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// TranscribeResult contains the result of a transcription.
type TranscribeResult struct {
	Text     string
	Language string
	JSONPath string
}

// Transcribe converts source into a WhisperX-ready WAV inside workDir and
// returns the recognized text. lang is an optional hint; an empty or
// unparseable value lets WhisperX detect the language itself.
func (s *Service) Transcribe(ctx context.Context, source, workDir, lang string) (TranscribeResult, error) {
	var result TranscribeResult

	if source == "" {
		return result, fmt.Errorf("transcribe: source path required")
	}
	if workDir == "" {
		workDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure work dir: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	wavPath := filepath.Join(workDir, baseName+".wav")
	if err := s.run(ctx, s.ffmpegBinary, toWAVArgs(source, wavPath)...); err != nil {
		return result, fmt.Errorf("ffmpeg normalize: %w", err)
	}

	args := s.buildArgs(wavPath, workDir, lang)
	if err := s.run(ctx, s.uvxBinary, args...); err != nil {
		return result, fmt.Errorf("whisperx: %w", err)
	}

	result.JSONPath = filepath.Join(workDir, baseName+".json")
	payload, err := loadPayload(result.JSONPath)
	if err != nil {
		return result, fmt.Errorf("whisperx output: %w", err)
	}
	result.Language = payload.Language
	result.Text = payload.text()
	if result.Text == "" {
		return result, ErrEmptyTranscript
	}
	return result, nil
}

// buildArgs assembles the uvx invocation: index flags, the tool, the input,
// then model, decoding, VAD, language and device flags.
func (s *Service) buildArgs(source, outputDir, lang string) []string {
	args := append(s.cfg.indexArgs(), "whisperx", source, "--model", s.Model(), "--output_dir", outputDir)
	args = append(args, decodeFlags...)
	args = append(args, s.cfg.vadArgs()...)
	if code := isoCode(lang); code != "" {
		args = append(args, "--language", code)
	}
	return append(args, s.cfg.deviceArgs()...)
}

// toWAVArgs downmixes the first audio stream of source to 16kHz mono PCM.
func toWAVArgs(source, dest string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", source,
		"-map", "0:a:0", "-vn",
		"-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le",
		dest,
	}
}

// isoCode reduces a BCP 47 tag such as "ko-KR" to the two-letter code WhisperX accepts.
func isoCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// payload is the JSON structure from WhisperX output.
type payload struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

func (p payload) text() string {
	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func loadPayload(jsonPath string) (payload, error) {
	var p payload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse whisperx json: %w", err)
	}
	return p, nil
}
