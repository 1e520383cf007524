// Package discovery finds the newest video a channel published inside a
// trailing window. Results are tagged so callers can tell an empty window
// apart from a failed search.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tubeinsight/internal/logging"
	"tubeinsight/internal/youtube"
)

// DefaultWindowDays is the window used when none is configured.
const DefaultWindowDays = 7

// Candidate is a video eligible for acquisition.
type Candidate struct {
	Title        string
	VideoID      string
	PublishedAt  time.Time
	ChannelTitle string
}

// Kind tags an Outcome.
type Kind int

const (
	Found Kind = iota
	NoneInWindow
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NoneInWindow:
		return "none_in_window"
	case TransportFailure:
		return "transport_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the tagged result of FindLatest. Video is set only for Found;
// Detail and Err only for TransportFailure.
type Outcome struct {
	Kind   Kind
	Video  Candidate
	Detail string
	Err    error
}

// VideoOrNone returns the candidate when one was found. It folds NoneInWindow and
// TransportFailure together for callers that show a single "no new video" state.
func (o Outcome) VideoOrNone() (Candidate, bool) {
	if o.Kind == Found {
		return o.Video, true
	}
	return Candidate{}, false
}

// Finder queries the search boundary for recent uploads.
type Finder struct {
	search     youtube.Searcher
	windowDays int
	maxResults int
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes the finder.
type Option func(*Finder)

// WithWindowDays overrides the default seven day window.
func WithWindowDays(days int) Option {
	return func(f *Finder) {
		if days > 0 {
			f.windowDays = days
		}
	}
}

// WithMaxResults sets how many results are requested per query.
func WithMaxResults(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.maxResults = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Finder) {
		if now != nil {
			f.now = now
		}
	}
}

// New constructs a finder.
func New(search youtube.Searcher, logger *slog.Logger, opts ...Option) *Finder {
	f := &Finder{
		search:     search,
		windowDays: DefaultWindowDays,
		maxResults: 1,
		now:        time.Now,
		logger:     logging.NewComponentLogger(logger, "discovery"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindLatest returns the newest video of channelID published after
// now minus windowDays. A non-positive windowDays uses the finder's default.
// The window is rolling: it is measured back from the current instant, not
// from a calendar-day boundary.
func (f *Finder) FindLatest(ctx context.Context, channelID string, windowDays int) Outcome {
	if windowDays <= 0 {
		windowDays = f.windowDays
	}
	after := f.now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	items, err := f.search.Search(ctx, youtube.SearchRequest{
		Type:           youtube.TypeVideo,
		ChannelID:      channelID,
		PublishedAfter: after,
		Order:          "date",
		MaxResults:     f.maxResults,
	})
	if err != nil {
		f.logger.Warn("recent video search failed",
			logging.String(logging.FieldChannelID, channelID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "discovery_transport_failure"),
			logging.String(logging.FieldImpact, "channel reported as having no new video"),
		)
		return Outcome{Kind: TransportFailure, Detail: err.Error(), Err: err}
	}

	var (
		best  Candidate
		found bool
	)
	for _, item := range items {
		if item.Kind != youtube.TypeVideo || item.ID == "" {
			continue
		}
		// Items older than the bound are skipped even if the API returns them.
		if !item.PublishedAt.IsZero() && item.PublishedAt.Before(after) {
			continue
		}
		if !found || item.PublishedAt.After(best.PublishedAt) {
			best = Candidate{
				Title:        item.Title,
				VideoID:      item.ID,
				PublishedAt:  item.PublishedAt,
				ChannelTitle: item.ChannelTitle,
			}
			found = true
		}
	}
	if !found {
		f.logger.Info("no video in window",
			logging.String(logging.FieldChannelID, channelID),
			logging.Int("window_days", windowDays),
		)
		return Outcome{Kind: NoneInWindow}
	}
	f.logger.Info("latest video found",
		logging.String(logging.FieldChannelID, channelID),
		logging.String(logging.FieldVideoID, best.VideoID),
		logging.String("title", best.Title),
	)
	return Outcome{Kind: Found, Video: best}
}
