package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubeinsight/internal/acquisition"
	"tubeinsight/internal/discovery"
	"tubeinsight/internal/logging"
	"tubeinsight/internal/notifications"
	"tubeinsight/internal/registry"
	"tubeinsight/internal/summarize"
)

type fakeRegistry struct {
	snap registry.Snapshot
	err  error
}

func (f fakeRegistry) Load(context.Context) (registry.Snapshot, error) {
	return f.snap, f.err
}

type fakeFinder map[string]discovery.Outcome

func (f fakeFinder) FindLatest(_ context.Context, channelID string, _ int) discovery.Outcome {
	if out, ok := f[channelID]; ok {
		return out
	}
	return discovery.Outcome{Kind: discovery.NoneInWindow}
}

type fakeAcquirer struct {
	results map[string]acquisition.Result
	calls   []string
}

func (f *fakeAcquirer) Acquire(_ context.Context, videoID string, onProgress acquisition.ProgressFunc) acquisition.Result {
	f.calls = append(f.calls, videoID)
	if onProgress != nil {
		onProgress(acquisition.Progress{VideoID: videoID, Stage: acquisition.StageNativeCaption, Message: "fetching captions"})
	}
	if res, ok := f.results[videoID]; ok {
		return res
	}
	return acquisition.Result{Provenance: acquisition.ProvenanceNone}
}

type fakeSummarizer struct {
	fail     map[string]bool
	requests []summarize.Request
}

func (f *fakeSummarizer) Summarize(_ context.Context, req summarize.Request) summarize.Outcome {
	f.requests = append(f.requests, req)
	if f.fail[req.Title] {
		return summarize.Outcome{Kind: summarize.KindFailure, Detail: "rate limited"}
	}
	return summarize.Outcome{Kind: summarize.KindInsight, Text: "insight for " + req.Title}
}

type recordingNotifier struct {
	ready     []notifications.ReportSummary
	exhausted []string
	errs      []string
}

func (r *recordingNotifier) NotifyReportReady(_ context.Context, s notifications.ReportSummary) error {
	r.ready = append(r.ready, s)
	return nil
}

func (r *recordingNotifier) NotifyRegistryConflict(context.Context, string) error { return nil }

func (r *recordingNotifier) NotifyAcquisitionExhausted(_ context.Context, _ string, title string) error {
	r.exhausted = append(r.exhausted, title)
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, _ error, label string) error {
	r.errs = append(r.errs, label)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

var fixedNow = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

func found(id, title string) discovery.Outcome {
	return discovery.Outcome{
		Kind:  discovery.Found,
		Video: discovery.Candidate{VideoID: id, Title: title, PublishedAt: fixedNow.Add(-24 * time.Hour)},
	}
}

func newTestRunner(t *testing.T, deps Dependencies) *Runner {
	t.Helper()
	return New(deps, Settings{
		ReportDir: t.TempDir(),
		Now:       func() time.Time { return fixedNow },
	}, logging.NewNop())
}

func TestRunWritesSectionsAndSkips(t *testing.T) {
	reg := fakeRegistry{snap: registry.Snapshot{Entries: []registry.ChannelEntry{
		{Name: "Alpha", Handle: "@alpha", ID: "UC_A"},
		{Name: "Beta", Handle: "@beta", ID: "UC_B"},
		{Name: "Gamma", Handle: "@gamma", ID: "UC_C"},
	}}}
	finder := fakeFinder{
		"UC_A": found("vidA", "Alpha Weekly"),
		"UC_C": {Kind: discovery.TransportFailure, Detail: "quota exceeded"},
	}
	acq := &fakeAcquirer{results: map[string]acquisition.Result{
		"vidA": {Text: "hello", Provenance: acquisition.ProvenanceNativeCaption},
	}}
	sum := &fakeSummarizer{}
	notifier := &recordingNotifier{}
	runner := newTestRunner(t, Dependencies{Registry: reg, Finder: finder, Acquirer: acq, Summarizer: sum, Notifier: notifier})

	var events []Event
	res, err := runner.Run(context.Background(), RunOptions{Observer: func(ev Event) { events = append(events, ev) }})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected run id")
	}
	if len(res.Report.Sections) != 1 || res.Report.Sections[0].VideoID != "vidA" {
		t.Fatalf("unexpected sections: %+v", res.Report.Sections)
	}
	if len(res.Report.Skipped) != 2 {
		t.Fatalf("expected two skipped channels, got %+v", res.Report.Skipped)
	}
	if !strings.Contains(res.Report.Skipped[0].Reason, "no new video") {
		t.Fatalf("unexpected skip reason: %q", res.Report.Skipped[0].Reason)
	}
	if !strings.Contains(res.Report.Skipped[1].Reason, "quota exceeded") {
		t.Fatalf("transport failure should be distinguishable: %q", res.Report.Skipped[1].Reason)
	}
	if want := filepath.Join(runner.reportDir, "insight-report-2026-03-09.md"); res.Path != want {
		t.Fatalf("path = %q, want %q", res.Path, want)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "insight for Alpha Weekly") {
		t.Fatalf("report missing insight:\n%s", data)
	}
	if len(notifier.ready) != 1 || notifier.ready[0].Videos != 1 || notifier.ready[0].Channels != 3 {
		t.Fatalf("unexpected ready notifications: %+v", notifier.ready)
	}
	last := events[len(events)-1]
	if last.Done != 3 || last.Total != 3 || last.Fraction() != 1 {
		t.Fatalf("unexpected final event: %+v", last)
	}
}

func TestRunUsesManualTranscriptWhenExhausted(t *testing.T) {
	reg := fakeRegistry{snap: registry.Snapshot{Entries: []registry.ChannelEntry{{Name: "Alpha", ID: "UC_A"}}}}
	finder := fakeFinder{"UC_A": found("vidA", "Alpha Weekly")}
	acq := &fakeAcquirer{}
	sum := &fakeSummarizer{}
	notifier := &recordingNotifier{}
	runner := newTestRunner(t, Dependencies{Registry: reg, Finder: finder, Acquirer: acq, Summarizer: sum, Notifier: notifier})

	res, err := runner.Run(context.Background(), RunOptions{
		Manual: map[string]acquisition.Result{
			"vidA": {Text: "typed by hand", Provenance: acquisition.ProvenanceManualUpload},
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Report.Sections) != 1 {
		t.Fatalf("expected section from manual transcript, got %+v", res.Report)
	}
	if got := res.Report.Sections[0].Provenance; got != acquisition.ProvenanceManualUpload.Label() {
		t.Fatalf("provenance = %q", got)
	}
	if sum.requests[0].Transcript != "typed by hand" {
		t.Fatalf("summarizer got %q", sum.requests[0].Transcript)
	}
	if len(notifier.exhausted) != 0 {
		t.Fatalf("no exhausted notification expected, got %v", notifier.exhausted)
	}
}

func TestRunRecordsMissingTranscript(t *testing.T) {
	reg := fakeRegistry{snap: registry.Snapshot{Entries: []registry.ChannelEntry{{Name: "Alpha", ID: "UC_A"}}}}
	finder := fakeFinder{"UC_A": found("vidA", "Alpha Weekly")}
	sum := &fakeSummarizer{}
	notifier := &recordingNotifier{}
	runner := newTestRunner(t, Dependencies{Registry: reg, Finder: finder, Acquirer: &fakeAcquirer{}, Summarizer: sum, Notifier: notifier})

	res, err := runner.Run(context.Background(), RunOptions{SkipWrite: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Missing) != 1 || res.Missing[0].VideoID != "vidA" {
		t.Fatalf("unexpected missing list: %+v", res.Missing)
	}
	if len(sum.requests) != 0 {
		t.Fatal("summarizer must not run without a transcript")
	}
	if len(notifier.exhausted) != 1 || notifier.exhausted[0] != "Alpha Weekly" {
		t.Fatalf("unexpected exhausted notifications: %v", notifier.exhausted)
	}
	if !strings.Contains(res.Report.Skipped[0].Reason, "--manual-file vidA=PATH") {
		t.Fatalf("skip reason should explain recovery: %q", res.Report.Skipped[0].Reason)
	}
	if res.Path != "" {
		t.Fatalf("SkipWrite should not write, got %q", res.Path)
	}
}

func TestRunKeepsFailedSummaryAsSection(t *testing.T) {
	reg := fakeRegistry{snap: registry.Snapshot{Entries: []registry.ChannelEntry{{Name: "Alpha", ID: "UC_A"}}}}
	finder := fakeFinder{"UC_A": found("vidA", "Alpha Weekly")}
	acq := &fakeAcquirer{results: map[string]acquisition.Result{
		"vidA": {Text: "hello", Provenance: acquisition.ProvenanceAudioTranscription},
	}}
	sum := &fakeSummarizer{fail: map[string]bool{"Alpha Weekly": true}}
	runner := newTestRunner(t, Dependencies{Registry: reg, Finder: finder, Acquirer: acq, Summarizer: sum})

	res, err := runner.Run(context.Background(), RunOptions{SkipWrite: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	section := res.Report.Sections[0]
	if !section.Failed || !strings.Contains(section.Insight, "rate limited") {
		t.Fatalf("unexpected section: %+v", section)
	}
}

func TestRunContinuesWhenRegistryUnavailable(t *testing.T) {
	reg := fakeRegistry{err: errors.New("backend offline")}
	runner := newTestRunner(t, Dependencies{Registry: reg, Finder: fakeFinder{}, Acquirer: &fakeAcquirer{}, Summarizer: &fakeSummarizer{}})

	res, err := runner.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Registry == nil {
		t.Fatal("expected registry error to be surfaced")
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "No new videos in the window.") {
		t.Fatalf("unexpected empty report:\n%s", data)
	}
}

func TestRunWritesToExplicitOutput(t *testing.T) {
	runner := newTestRunner(t, Dependencies{Registry: fakeRegistry{}, Finder: fakeFinder{}, Acquirer: &fakeAcquirer{}, Summarizer: &fakeSummarizer{}})
	out := filepath.Join(t.TempDir(), "nested", "custom.md")

	res, err := runner.Run(context.Background(), RunOptions{OutputPath: out, WindowDays: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Path != out {
		t.Fatalf("path = %q, want %q", res.Path, out)
	}
	if res.Report.WindowDays != 3 {
		t.Fatalf("window override ignored: %d", res.Report.WindowDays)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	reg := fakeRegistry{snap: registry.Snapshot{Entries: []registry.ChannelEntry{{Name: "Alpha", ID: "UC_A"}}}}
	acq := &fakeAcquirer{}
	runner := newTestRunner(t, Dependencies{Registry: reg, Finder: fakeFinder{}, Acquirer: acq, Summarizer: &fakeSummarizer{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx, RunOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
