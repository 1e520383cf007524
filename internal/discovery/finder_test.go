package discovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tubeinsight/internal/discovery"
	"tubeinsight/internal/youtube"
)

type fakeSearch struct {
	items []youtube.SearchItem
	err   error
	last  youtube.SearchRequest
	calls int
}

func (f *fakeSearch) Search(_ context.Context, req youtube.SearchRequest) ([]youtube.SearchItem, error) {
	f.calls++
	f.last = req
	return f.items, f.err
}

var fixedNow = time.Date(2026, 10, 15, 12, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestFindLatestRollingWindow(t *testing.T) {
	search := &fakeSearch{}
	finder := discovery.New(search, nil, discovery.WithClock(clock))
	finder.FindLatest(context.Background(), "UC1", 0)

	want := fixedNow.Add(-7 * 24 * time.Hour)
	if !search.last.PublishedAfter.Equal(want) {
		t.Fatalf("publishedAfter = %v, want %v", search.last.PublishedAfter, want)
	}
	if search.last.Type != youtube.TypeVideo || search.last.Order != "date" || search.last.ChannelID != "UC1" {
		t.Fatalf("unexpected request %+v", search.last)
	}

	finder.FindLatest(context.Background(), "UC1", 3)
	want = fixedNow.Add(-3 * 24 * time.Hour)
	if !search.last.PublishedAfter.Equal(want) {
		t.Fatalf("publishedAfter = %v, want %v", search.last.PublishedAfter, want)
	}
}

func TestFindLatestPicksNewest(t *testing.T) {
	search := &fakeSearch{items: []youtube.SearchItem{
		{Kind: youtube.TypeVideo, ID: "older", Title: "Old", PublishedAt: fixedNow.Add(-48 * time.Hour)},
		{Kind: youtube.TypeVideo, ID: "newest", Title: "New", ChannelTitle: "Creator", PublishedAt: fixedNow.Add(-2 * time.Hour)},
		{Kind: youtube.TypeVideo, ID: "stale", PublishedAt: fixedNow.Add(-30 * 24 * time.Hour)},
	}}
	outcome := discovery.New(search, nil, discovery.WithClock(clock), discovery.WithMaxResults(5)).FindLatest(context.Background(), "UC1", 7)
	if outcome.Kind != discovery.Found {
		t.Fatalf("expected found, got %v", outcome.Kind)
	}
	if outcome.Video.VideoID != "newest" || outcome.Video.ChannelTitle != "Creator" {
		t.Fatalf("unexpected video %+v", outcome.Video)
	}
	if search.last.MaxResults != 5 {
		t.Fatalf("expected max results 5, got %d", search.last.MaxResults)
	}
	if v, ok := outcome.VideoOrNone(); !ok || v.VideoID != "newest" {
		t.Fatalf("unexpected VideoOrNone %+v %v", v, ok)
	}
}

func TestFindLatestEmptyWindow(t *testing.T) {
	outcome := discovery.New(&fakeSearch{}, nil, discovery.WithClock(clock)).FindLatest(context.Background(), "UC1", 7)
	if outcome.Kind != discovery.NoneInWindow {
		t.Fatalf("expected none in window, got %v", outcome.Kind)
	}
	if _, ok := outcome.VideoOrNone(); ok {
		t.Fatal("expected no video")
	}
}

func TestFindLatestTransportFailureIsDistinct(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	outcome := discovery.New(&fakeSearch{err: boom}, nil, discovery.WithClock(clock)).FindLatest(context.Background(), "UC1", 7)
	if outcome.Kind != discovery.TransportFailure {
		t.Fatalf("expected transport failure, got %v", outcome.Kind)
	}
	if !errors.Is(outcome.Err, boom) || outcome.Detail == "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if _, ok := outcome.VideoOrNone(); ok {
		t.Fatal("transport failure must not yield a video")
	}
}

func TestKindString(t *testing.T) {
	if discovery.NoneInWindow.String() != "none_in_window" || discovery.Kind(9).String() != "kind(9)" {
		t.Fatal("unexpected kind strings")
	}
}
