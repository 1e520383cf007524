// Package summarize turns an acquired transcript into insight prose.
//
// Transcripts are clipped to a character ceiling before submission, never
// rejected. Summarize reports success and failure as distinct outcome kinds
// so renderers can tell an insight from an error description.
package summarize

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"tubeinsight/internal/logging"
	"tubeinsight/internal/textutil"
)

// DefaultMaxChars is the transcript ceiling applied when none is configured.
const DefaultMaxChars = 15000

// Completer sends prompts to a chat model.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Kind tags an Outcome.
type Kind int

const (
	KindInsight Kind = iota
	KindFailure
)

func (k Kind) String() string {
	if k == KindInsight {
		return "insight"
	}
	return "failure"
}

// Outcome is either insight text or a failure detail, never both.
type Outcome struct {
	Kind      Kind
	Text      string
	Detail    string
	Truncated bool
	Err       error
}

// OK reports whether the outcome carries insight text.
func (o Outcome) OK() bool {
	return o.Kind == KindInsight
}

// Body returns the text a report section should show for this outcome.
func (o Outcome) Body() string {
	if o.OK() {
		return o.Text
	}
	return "Insight generation failed: " + o.Detail
}

// Request describes one video to summarize.
type Request struct {
	Title      string
	Channel    string
	Transcript string
}

// Summarizer builds prompts and calls the model.
type Summarizer struct {
	completer Completer
	maxChars  int
	language  string
	logger    *slog.Logger
}

// New constructs a Summarizer. maxChars <= 0 uses DefaultMaxChars.
func New(completer Completer, maxChars int, language string, logger *slog.Logger) *Summarizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Summarizer{
		completer: completer,
		maxChars:  maxChars,
		language:  language,
		logger:    logging.NewComponentLogger(logger, "summarize"),
	}
}

// Clip applies the transcript ceiling.
func (s *Summarizer) Clip(transcript string) (string, bool) {
	transcript = strings.TrimSpace(transcript)
	clipped := textutil.Truncate(transcript, s.maxChars)
	return clipped, len(clipped) != len(transcript)
}

// Summarize returns an insight for req. Model errors become a KindFailure outcome.
func (s *Summarizer) Summarize(ctx context.Context, req Request) Outcome {
	logger := logging.WithContext(ctx, s.logger)
	transcript, truncated := s.Clip(req.Transcript)
	if transcript == "" {
		return Outcome{Kind: KindFailure, Detail: "transcript is empty"}
	}
	if truncated {
		logger.Info("transcript clipped",
			logging.Int("limit", s.maxChars),
			logging.Int("original_chars", utf8.RuneCountInString(req.Transcript)),
		)
	}

	started := time.Now()
	text, err := s.completer.Complete(ctx, buildSystemPrompt(s.language), BuildUserPrompt(req.Title, req.Channel, transcript))
	if err != nil {
		logging.WarnWithContext(logger, "insight generation failed", "summarize_failed",
			"report section shows the error instead of an insight",
			logging.Error(err),
			logging.Duration("elapsed", time.Since(started)),
		)
		return Outcome{Kind: KindFailure, Detail: err.Error(), Truncated: truncated, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Kind: KindFailure, Detail: "model returned no text", Truncated: truncated}
	}
	logger.Info("insight generated",
		logging.Int("chars", utf8.RuneCountInString(text)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Outcome{Kind: KindInsight, Text: text, Truncated: truncated}
}
