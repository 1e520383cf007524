// Package report assembles per-video insights into a dated Markdown document.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTitle heads every report.
const DefaultTitle = "AI Business Insight Report"

// Section is one analyzed video.
type Section struct {
	Channel     string
	VideoTitle  string
	VideoID     string
	PublishedAt time.Time
	Provenance  string
	Insight     string
	Failed      bool
}

// Skip records a channel that contributed no section, and why.
type Skip struct {
	Channel string
	Reason  string
}

// Report is the full document for one run.
type Report struct {
	Title       string
	GeneratedAt time.Time
	WindowDays  int
	Sections    []Section
	Skipped     []Skip
}

// Empty reports whether no video produced a section.
func (r Report) Empty() bool {
	return len(r.Sections) == 0
}

// FileName returns the dated file name for the report.
func (r Report) FileName() string {
	return "insight-report-" + r.GeneratedAt.Format("2006-01-02") + ".md"
}

// Render produces the Markdown text.
func (r Report) Render() string {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = DefaultTitle
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02"))
	if r.WindowDays > 0 {
		fmt.Fprintf(&b, "Window: last %d days\n", r.WindowDays)
	}
	b.WriteString("\n")

	if r.Empty() {
		b.WriteString("No new videos in the window.\n")
	}
	for _, s := range r.Sections {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "## [%s] %s\n\n", oneLine(s.Channel), oneLine(s.VideoTitle))
		if s.VideoID != "" {
			fmt.Fprintf(&b, "- Video: https://www.youtube.com/watch?v=%s\n", s.VideoID)
		}
		if !s.PublishedAt.IsZero() {
			fmt.Fprintf(&b, "- Published: %s\n", s.PublishedAt.UTC().Format(time.RFC3339))
		}
		if s.Provenance != "" {
			fmt.Fprintf(&b, "- Transcript source: %s\n", s.Provenance)
		}
		b.WriteString("\n")
		body := strings.TrimSpace(s.Insight)
		if s.Failed {
			fmt.Fprintf(&b, "> %s\n\n", oneLine(body))
			continue
		}
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	if len(r.Skipped) > 0 {
		b.WriteString("---\n\n## Skipped channels\n\n")
		for _, skip := range r.Skipped {
			fmt.Fprintf(&b, "- %s: %s\n", oneLine(skip.Channel), oneLine(skip.Reason))
		}
	}
	return b.String()
}

// WriteFile renders the report into dir and returns the written path. An
// existing report for the same date is replaced atomically.
func WriteFile(dir string, r Report) (string, error) {
	return WriteTo(filepath.Join(dir, r.FileName()), r)
}

// WriteTo renders the report to an explicit path.
func WriteTo(path string, r Report) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("report: ensure dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("report: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(r.Render()); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("report: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("report: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("report: rename: %w", err)
	}
	return path, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
