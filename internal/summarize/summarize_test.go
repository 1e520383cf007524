package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"tubeinsight/internal/logging"
)

type stubCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.system, s.user = system, user
	return s.reply, s.err
}

func TestSummarizeInsight(t *testing.T) {
	stub := &stubCompleter{reply: "  1. summary  "}
	s := New(stub, 0, "ko", logging.NewNop())

	out := s.Summarize(context.Background(), Request{Title: "New agents", Channel: "AI Lab", Transcript: "hello world"})

	if !out.OK() || out.Text != "1. summary" || out.Body() != "1. summary" || out.Truncated {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !strings.Contains(stub.user, "Video title: New agents") || !strings.Contains(stub.user, "Channel: AI Lab") || !strings.HasSuffix(stub.user, "hello world") {
		t.Fatalf("unexpected user prompt %q", stub.user)
	}
	if !strings.Contains(stub.system, "Five AI agent business application ideas") || !strings.Contains(stub.system, "audience: ko") {
		t.Fatalf("unexpected system prompt %q", stub.system)
	}
}

func TestSummarizeClipsTranscript(t *testing.T) {
	stub := &stubCompleter{reply: "ok"}
	s := New(stub, 100, "en", nil)
	long := strings.Repeat("가", 250)

	out := s.Summarize(context.Background(), Request{Title: "t", Transcript: long})

	if !out.Truncated {
		t.Fatal("expected truncation flag")
	}
	body := stub.user[strings.Index(stub.user, "Transcript:\n")+len("Transcript:\n"):]
	if utf8.RuneCountInString(body) != 100 {
		t.Fatalf("transcript sent with %d runes", utf8.RuneCountInString(body))
	}
}

func TestSummarizeDefaultCeiling(t *testing.T) {
	s := New(&stubCompleter{}, 0, "", nil)
	clipped, truncated := s.Clip(strings.Repeat("a", DefaultMaxChars+10))
	if !truncated || len(clipped) != DefaultMaxChars {
		t.Fatalf("clip = %d runes, truncated=%v", len(clipped), truncated)
	}
	if _, truncated := s.Clip("short"); truncated {
		t.Fatal("short transcript reported as truncated")
	}
}

func TestSummarizeFailureIsTagged(t *testing.T) {
	cause := errors.New("http 500")
	out := New(&stubCompleter{err: cause}, 0, "ko", nil).Summarize(context.Background(), Request{Title: "t", Transcript: "x"})
	if out.OK() || out.Kind != KindFailure || !errors.Is(out.Err, cause) {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !strings.Contains(out.Body(), "http 500") {
		t.Fatalf("failure body %q", out.Body())
	}
	if out.Kind.String() != "failure" || KindInsight.String() != "insight" {
		t.Fatal("unexpected kind strings")
	}
}

func TestSummarizeEmptyInputs(t *testing.T) {
	stub := &stubCompleter{reply: "   "}
	s := New(stub, 0, "ko", nil)
	if out := s.Summarize(context.Background(), Request{Transcript: "  "}); out.OK() || stub.calls != 0 {
		t.Fatalf("empty transcript: %+v calls=%d", out, stub.calls)
	}
	if out := s.Summarize(context.Background(), Request{Transcript: "x"}); out.OK() {
		t.Fatalf("blank reply accepted: %+v", out)
	}
}
