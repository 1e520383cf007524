package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tubeinsight/internal/config"
)

const userAgent = "tubeinsight/0.1"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyReportReady(ctx context.Context, summary ReportSummary) error
	NotifyRegistryConflict(ctx context.Context, action string) error
	NotifyAcquisitionExhausted(ctx context.Context, channel, videoTitle string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// ReportSummary describes a finished report run.
type ReportSummary struct {
	Channels int
	Videos   int
	Missing  int
	Path     string
	Duration time.Duration
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyReportReady(ctx context.Context, summary ReportSummary) error {
	duration := max(summary.Duration.Round(time.Second), 0)
	var message string
	if summary.Videos == 0 {
		message = fmt.Sprintf("No new videos across %d channels", summary.Channels)
	} else {
		message = fmt.Sprintf("📊 %d insights from %d channels in %s", summary.Videos, summary.Channels, duration)
	}
	if summary.Missing > 0 {
		message += fmt.Sprintf("\n%d videos had no transcript", summary.Missing)
	}
	if path := strings.TrimSpace(summary.Path); path != "" {
		message += "\nReport: " + path
	}
	return n.send(ctx, payload{
		title:   "tubeinsight - Report Ready",
		message: message,
		tags:    []string{"tubeinsight", "report", "completed"},
	})
}

func (n *ntfyService) NotifyRegistryConflict(ctx context.Context, action string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		action = "registry update"
	}
	return n.send(ctx, payload{
		title:    "tubeinsight - Registry Conflict",
		message:  fmt.Sprintf("⚠️ %s rejected: the channel registry changed since it was loaded. Reload and retry.", action),
		tags:     []string{"tubeinsight", "registry", "conflict"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyAcquisitionExhausted(ctx context.Context, channel, videoTitle string) error {
	return n.send(ctx, payload{
		title:   "tubeinsight - Transcript Needed",
		message: fmt.Sprintf("No transcript for %q (%s)\nProvide one with --manual-file", strings.TrimSpace(videoTitle), strings.TrimSpace(channel)),
		tags:    []string{"tubeinsight", "transcript", "manual"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "tubeinsight - Error",
		message:  builder.String(),
		tags:     []string{"tubeinsight", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "tubeinsight - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"tubeinsight", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyReportReady(context.Context, ReportSummary) error           { return nil }
func (noopService) NotifyRegistryConflict(context.Context, string) error             { return nil }
func (noopService) NotifyAcquisitionExhausted(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
