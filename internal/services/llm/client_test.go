package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tubeinsight/internal/services"
)

func writeCompletion(t *testing.T, w http.ResponseWriter, choice map[string]any) {
	t.Helper()
	payload := map[string]any{"choices": []any{choice}}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestClientCompleteSendsPrompts(t *testing.T) {
	var got chatCompletionRequest
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCompletion(t, w, map[string]any{
			"message": map[string]any{"content": "  1. 요약\n2. 분석  "},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Referer: "https://example.test", Title: "tubeinsight"})
	text, err := client.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "1. 요약\n2. 분석" {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "demo-model" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user prompt" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.ResponseFormat != nil {
		t.Fatalf("prose completion must not request JSON mode")
	}
	if headers.Get("Authorization") != "Bearer test" || headers.Get("X-Title") != "tubeinsight" || headers.Get("HTTP-Referer") != "https://example.test" {
		t.Fatalf("unexpected headers %v", headers)
	}
}

func TestClientCompleteRequiresKey(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Complete(context.Background(), "s", "u")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if client.Model() != defaultModel {
		t.Fatalf("default model = %q", client.Model())
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, map[string]any{
			"message": map[string]any{"content": "```json\n{\"ok\":true}\n```"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientUnauthorizedIsConfigurationError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	err := client.HealthCheck(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("401 must not be retried, got %d calls", calls)
	}
}

func TestClientDeltaAndLegacyText(t *testing.T) {
	for name, choice := range map[string]map[string]any{
		"delta":  {"delta": map[string]any{"content": "from delta"}},
		"legacy": {"text": "from delta", "finish_reason": "stop"},
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(t, w, choice)
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
			text, err := client.Complete(context.Background(), "", "prompt")
			if err != nil || text != "from delta" {
				t.Fatalf("got %q, %v", text, err)
			}
		})
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		writeCompletion(t, w, map[string]any{"message": map[string]any{"content": "insight"}})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	text, err := client.Complete(context.Background(), "s", "u")
	if err != nil || text != "insight" {
		t.Fatalf("Complete = %q, %v", text, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientEmptyContentExhaustsRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeCompletion(t, w, map[string]any{
			"finish_reason": "content_filter",
			"message":       map[string]any{"content": ""},
		})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(3),
	)
	_, err := client.Complete(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !strings.Contains(err.Error(), "content_filter") || !strings.Contains(err.Error(), "response_snippet=") {
		t.Fatalf("expected finish reason and snippet in %v", err)
	}
}

func TestBackoffDelay(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: got %s want %s", i+1, got, expected)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		OK bool `json:"ok"`
	}
	for _, input := range []string{`{"ok":true}`, "```json\n{\"ok\":true}\n```", `Sure! {"ok":true} done`} {
		out.OK = false
		if err := DecodeJSON(input, &out); err != nil || !out.OK {
			t.Fatalf("DecodeJSON(%q) = %v, ok=%v", input, err, out.OK)
		}
	}
	if err := DecodeJSON("  ", &out); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("got %s %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative retry-after accepted")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage retry-after accepted")
	}
}
