package workflow

import (
	"context"

	"tubeinsight/internal/acquisition"
	"tubeinsight/internal/discovery"
	"tubeinsight/internal/registry"
	"tubeinsight/internal/summarize"
)

// RegistryLoader supplies the channel list.
type RegistryLoader interface {
	Load(ctx context.Context) (registry.Snapshot, error)
}

// VideoFinder locates the newest video for a channel.
type VideoFinder interface {
	FindLatest(ctx context.Context, channelID string, windowDays int) discovery.Outcome
}

// Acquirer obtains a transcript for a video.
type Acquirer interface {
	Acquire(ctx context.Context, videoID string, onProgress acquisition.ProgressFunc) acquisition.Result
}

// Summarizer turns a transcript into insight text.
type Summarizer interface {
	Summarize(ctx context.Context, req summarize.Request) summarize.Outcome
}

// EventKind classifies progress events.
type EventKind string

const (
	EventChannelStarted EventKind = "channel_started"
	EventVideoFound     EventKind = "video_found"
	EventStage          EventKind = "acquisition_stage"
	EventAnalyzing      EventKind = "analyzing"
	EventChannelDone    EventKind = "channel_done"
	EventChannelSkipped EventKind = "channel_skipped"
)

// Event reports run progress to an observer.
type Event struct {
	Kind    EventKind
	Channel string
	Video   string
	Message string
	Done    int
	Total   int
}

// Fraction returns completed channels over total channels.
func (e Event) Fraction() float64 {
	if e.Total <= 0 {
		return 1
	}
	return float64(e.Done) / float64(e.Total)
}

// Observer receives progress events. It may be nil.
type Observer func(Event)
