package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tubeinsight/internal/acquisition"
	"tubeinsight/internal/discovery"
	"tubeinsight/internal/logging"
	"tubeinsight/internal/notifications"
	"tubeinsight/internal/registry"
	"tubeinsight/internal/report"
	"tubeinsight/internal/services"
	"tubeinsight/internal/session"
	"tubeinsight/internal/summarize"
)

// Runner executes report runs.
type Runner struct {
	registry   RegistryLoader
	finder     VideoFinder
	acquirer   Acquirer
	summarizer Summarizer
	notifier   notifications.Service
	reportDir  string
	windowDays int
	now        func() time.Time
	logger     *slog.Logger
}

// Dependencies groups the collaborators of a Runner.
type Dependencies struct {
	Registry   RegistryLoader
	Finder     VideoFinder
	Acquirer   Acquirer
	Summarizer Summarizer
	Notifier   notifications.Service
}

// Settings holds the non-collaborator knobs of a Runner.
type Settings struct {
	ReportDir  string
	WindowDays int
	Now        func() time.Time
}

// New builds a Runner from explicit collaborators.
func New(deps Dependencies, settings Settings, logger *slog.Logger) *Runner {
	r := &Runner{
		registry:   deps.Registry,
		finder:     deps.Finder,
		acquirer:   deps.Acquirer,
		summarizer: deps.Summarizer,
		notifier:   deps.Notifier,
		reportDir:  settings.ReportDir,
		windowDays: settings.WindowDays,
		now:        settings.Now,
		logger:     logging.NewComponentLogger(logger, "workflow"),
	}
	if r.windowDays <= 0 {
		r.windowDays = discovery.DefaultWindowDays
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// RunOptions tunes a single run.
type RunOptions struct {
	// WindowDays overrides the configured window when positive.
	WindowDays int
	// OutputPath writes the report to this path instead of the report dir.
	OutputPath string
	// SkipWrite renders the report without writing it.
	SkipWrite bool
	// Manual supplies operator transcripts keyed by video id for videos whose
	// acquisition is exhausted.
	Manual map[string]acquisition.Result
	// Observer receives progress events.
	Observer Observer
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID    string
	Report   report.Report
	Path     string
	Missing  []MissingTranscript
	Registry error
	Duration time.Duration
}

// MissingTranscript names a video that needs a manual upload.
type MissingTranscript struct {
	Channel string
	VideoID string
	Title   string
}

// Run processes every registered channel and writes the report. It returns an
// error only when the report could not be written; per-channel problems are
// recorded in the report.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	windowDays := r.windowDays
	if opts.WindowDays > 0 {
		windowDays = opts.WindowDays
	}
	result := RunResult{
		RunID: runID,
		Report: report.Report{
			GeneratedAt: r.now(),
			WindowDays:  windowDays,
		},
	}

	snap, err := r.registry.Load(ctx)
	if err != nil {
		result.Registry = err
		logging.WarnWithContext(logger, "registry unavailable", "registry_unavailable",
			"report covers no channels", logging.Error(err))
	}
	total := len(snap.Entries)
	logger.Info("report run started", logging.Int("channels", total), logging.Int("window_days", windowDays))

	emit := func(ev Event) {
		ev.Total = total
		if opts.Observer != nil {
			opts.Observer(ev)
		}
	}

	for i, entry := range snap.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		chCtx := services.WithChannelID(ctx, entry.ID)
		emit(Event{Kind: EventChannelStarted, Channel: entry.Label(), Done: i})

		section, skip, missing := r.processChannel(chCtx, entry, windowDays, opts.Manual, func(ev Event) {
			ev.Done = i
			emit(ev)
		})
		switch {
		case section != nil:
			result.Report.Sections = append(result.Report.Sections, *section)
			emit(Event{Kind: EventChannelDone, Channel: entry.Label(), Video: section.VideoTitle, Done: i + 1})
		case skip != nil:
			result.Report.Skipped = append(result.Report.Skipped, *skip)
			emit(Event{Kind: EventChannelSkipped, Channel: entry.Label(), Message: skip.Reason, Done: i + 1})
		}
		if missing != nil {
			result.Missing = append(result.Missing, *missing)
		}
	}

	if !opts.SkipWrite {
		path, err := r.write(result.Report, opts.OutputPath)
		if err != nil {
			r.notifyError(ctx, err, "report write")
			return result, err
		}
		result.Path = path
	}
	result.Duration = time.Since(started)

	logger.Info("report run finished",
		logging.Int("sections", len(result.Report.Sections)),
		logging.Int("skipped", len(result.Report.Skipped)),
		logging.Int("missing_transcripts", len(result.Missing)),
		logging.String("path", result.Path),
		logging.Duration("duration", result.Duration),
	)
	if r.notifier != nil {
		if err := r.notifier.NotifyReportReady(ctx, notifications.ReportSummary{
			Channels: total,
			Videos:   len(result.Report.Sections),
			Missing:  len(result.Missing),
			Path:     result.Path,
			Duration: result.Duration,
		}); err != nil {
			logger.Debug("report notification failed", logging.Error(err))
		}
	}
	return result, nil
}

func (r *Runner) write(rep report.Report, outputPath string) (string, error) {
	if strings.TrimSpace(outputPath) != "" {
		return report.WriteTo(outputPath, rep)
	}
	if strings.TrimSpace(r.reportDir) == "" {
		return "", services.Wrap(services.ErrConfiguration, "report", "write", "report directory not configured", nil)
	}
	return report.WriteFile(r.reportDir, rep)
}

// processChannel drives one channel's session. Exactly one of section and skip is non-nil.
func (r *Runner) processChannel(ctx context.Context, entry registry.ChannelEntry, windowDays int, manual map[string]acquisition.Result, emit func(Event)) (*report.Section, *report.Skip, *MissingTranscript) {
	logger := logging.WithContext(ctx, r.logger)
	machine := session.New(func(step session.Step) {
		logger.Debug("session transition",
			logging.String("from", string(step.From)),
			logging.String("event", string(step.Event)),
			logging.String("to", string(step.To)),
		)
	})
	fire := func(ev session.Event) {
		if err := machine.Fire(ev); err != nil {
			logger.Error("session transition rejected", logging.Error(err))
		}
	}
	skip := func(reason string) *report.Skip {
		return &report.Skip{Channel: entry.Label(), Reason: reason}
	}

	fire(session.EventStart)
	outcome := r.finder.FindLatest(ctx, entry.ID, windowDays)
	video, ok := outcome.VideoOrNone()
	if !ok {
		fire(session.EventVideoNotFound)
		if outcome.Kind == discovery.TransportFailure {
			return nil, skip("search failed: " + outcome.Detail), nil
		}
		return nil, skip(fmt.Sprintf("no new video in the last %d days", windowDays)), nil
	}
	fire(session.EventVideoFound)
	ctx = services.WithVideoID(ctx, video.VideoID)
	emit(Event{Kind: EventVideoFound, Channel: entry.Label(), Video: video.Title})

	transcript := r.acquirer.Acquire(ctx, video.VideoID, func(p acquisition.Progress) {
		emit(Event{Kind: EventStage, Channel: entry.Label(), Video: video.Title, Message: p.Message})
	})

	if transcript.Exhausted() {
		fire(session.EventContentExhausted)
		supplied, ok := manual[video.VideoID]
		if !ok || supplied.Exhausted() {
			fire(session.EventManualSkipped)
			r.notifyExhausted(ctx, entry.Label(), video.Title)
			return nil, skip(fmt.Sprintf("no transcript for %q (%s); supply one with --manual-file %s=PATH",
				video.Title, video.VideoID, video.VideoID)), &MissingTranscript{Channel: entry.Label(), VideoID: video.VideoID, Title: video.Title}
		}
		transcript = supplied
		fire(session.EventManualProvided)
	} else {
		fire(session.EventContentAcquired)
	}

	emit(Event{Kind: EventAnalyzing, Channel: entry.Label(), Video: video.Title})
	insight := r.summarizer.Summarize(ctx, summarize.Request{
		Title:      video.Title,
		Channel:    entry.Name,
		Transcript: transcript.Text,
	})
	fire(session.EventSummaryComplete)
	logger.Info("channel processed",
		logging.String("video_title", video.Title),
		logging.String("provenance", string(transcript.Provenance)),
		logging.String("insight", insight.Kind.String()),
		logging.String("session", machine.Path()),
	)

	return &report.Section{
		Channel:     entry.Label(),
		VideoTitle:  video.Title,
		VideoID:     video.VideoID,
		PublishedAt: video.PublishedAt,
		Provenance:  transcript.Provenance.Label(),
		Insight:     insight.Body(),
		Failed:      !insight.OK(),
	}, nil, nil
}

func (r *Runner) notifyExhausted(ctx context.Context, channel, title string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyAcquisitionExhausted(ctx, channel, title); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Debug("exhausted notification failed", logging.Error(err))
	}
}

func (r *Runner) notifyError(ctx context.Context, err error, label string) {
	if r.notifier == nil {
		return
	}
	if sendErr := r.notifier.NotifyError(ctx, err, label); sendErr != nil {
		r.logger.Debug("error notification failed", logging.Error(sendErr))
	}
}
