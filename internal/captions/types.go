package captions

import (
	"fmt"
	"strings"
	"time"

	"tubeinsight/internal/services"
	"tubeinsight/internal/textutil"
)

var (
	// ErrNoCaptions reports a video without any caption track.
	ErrNoCaptions = fmt.Errorf("%w: video has no caption tracks", services.ErrNotFound)
	// ErrLanguageUnavailable reports that no track matches the requested languages.
	ErrLanguageUnavailable = fmt.Errorf("%w: no caption track in the requested language", services.ErrNotFound)
	// ErrTranslationUnavailable reports a track the platform will not translate.
	ErrTranslationUnavailable = fmt.Errorf("%w: caption track cannot be translated", services.ErrNotFound)
	// ErrEmptyTranscript reports a track that returned no text.
	ErrEmptyTranscript = fmt.Errorf("%w: caption track is empty", services.ErrNotFound)
)

// Track is one published caption track.
type Track struct {
	LanguageCode string
	Name         string
	// Kind is "asr" for auto-generated tracks and empty for uploaded ones.
	Kind         string
	BaseURL      string
	Translatable bool
}

// Generated reports whether the track was produced by speech recognition.
func (t Track) Generated() bool {
	return t.Kind == "asr"
}

// Segment is one timed caption line.
type Segment struct {
	Start    time.Duration
	Duration time.Duration
	Text     string
}

// Transcript is the text of one track, optionally translated.
type Transcript struct {
	LanguageCode   string
	SourceLanguage string
	Translated     bool
	Segments       []Segment
}

// Text joins the segments with single spaces.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := textutil.CollapseWhitespace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
