package acquisition

import (
	"context"

	"tubeinsight/internal/captions"
	"tubeinsight/internal/services/whisperx"
)

// Provenance records which stage produced a transcript.
type Provenance string

const (
	ProvenanceNativeCaption      Provenance = "native_caption"
	ProvenanceTranslatedCaption  Provenance = "translated_caption"
	ProvenanceAudioTranscription Provenance = "audio_transcription"
	ProvenanceManualUpload       Provenance = "manual_upload"
	ProvenanceNone               Provenance = "none"
)

// Label returns an operator-facing description of the provenance.
func (p Provenance) Label() string {
	switch p {
	case ProvenanceNativeCaption:
		return "native captions"
	case ProvenanceTranslatedCaption:
		return "translated captions"
	case ProvenanceAudioTranscription:
		return "audio transcription"
	case ProvenanceManualUpload:
		return "manual upload"
	default:
		return "none"
	}
}

// Result is the outcome of one acquisition.
type Result struct {
	Text       string
	Provenance Provenance
}

// Exhausted reports whether every stage failed and a manual upload should be offered.
func (r Result) Exhausted() bool {
	return r.Provenance == ProvenanceNone || r.Provenance == ""
}

// Stage names one attempt in the fallback chain.
type Stage string

const (
	StageNativeCaption      Stage = "native_caption"
	StageTranslatedCaption  Stage = "translated_caption"
	StageAudioTranscription Stage = "audio_transcription"
)

// Progress is emitted before each stage starts.
type Progress struct {
	VideoID string
	Stage   Stage
	Message string
}

// ProgressFunc observes stage transitions. It may be nil.
type ProgressFunc func(Progress)

// CaptionSource lists and downloads caption tracks.
type CaptionSource interface {
	Tracks(ctx context.Context, videoID string) ([]captions.Track, error)
	FetchTrack(ctx context.Context, track captions.Track) (captions.Transcript, error)
	Translate(ctx context.Context, track captions.Track, target string) (captions.Transcript, error)
}

// AudioDownloader writes the best audio rendition of a video into destDir.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, videoID, destDir string) (string, error)
}

// Transcriber converts a local audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, source, workDir, lang string) (whisperx.TranscribeResult, error)
}
