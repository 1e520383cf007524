package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tubeinsight/internal/textutil"
)

// DefaultBinary is the yt-dlp executable looked up on PATH.
const DefaultBinary = "yt-dlp"

// ErrNoOutput is returned when yt-dlp exits cleanly without leaving an audio file.
var ErrNoOutput = errors.New("yt-dlp produced no audio file")

// CommandRunner executes an external binary to completion.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Client wraps the yt-dlp binary.
type Client struct {
	binary  string
	baseURL string
	run     CommandRunner
}

// Option customizes a Client.
type Option func(*Client)

// WithCommandRunner replaces process execution (for testing).
func WithCommandRunner(runner CommandRunner) Option {
	return func(c *Client) {
		if runner != nil {
			c.run = runner
		}
	}
}

// WithWatchBaseURL overrides the site used to build watch URLs.
func WithWatchBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// New builds a client for the given binary; an empty value uses DefaultBinary.
func New(binary string, opts ...Option) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	c := &Client{
		binary:  binary,
		baseURL: "https://www.youtube.com",
		run:     execRunner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the executable name used for downloads.
func (c *Client) Binary() string {
	return c.binary
}

// DownloadAudio fetches the best audio stream for videoID into destDir and
// returns the path of the written file. The file is named after the sanitized
// video id with whatever extension yt-dlp chose.
func (c *Client) DownloadAudio(ctx context.Context, videoID, destDir string) (string, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return "", fmt.Errorf("download audio: video id required")
	}
	if destDir == "" {
		return "", fmt.Errorf("download audio: destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("download audio: ensure dir: %w", err)
	}

	stem := textutil.SanitizeFileName(videoID)
	template := filepath.Join(destDir, stem+".%(ext)s")
	args := []string{
		"-f", "bestaudio",
		"--no-playlist",
		"--no-progress",
		"--quiet",
		"-o", template,
		c.baseURL + "/watch?v=" + url.QueryEscape(videoID),
	}
	if err := c.run(ctx, c.binary, args...); err != nil {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, globEscape(stem)+".*"))
	if err != nil {
		return "", fmt.Errorf("download audio: locate output: %w", err)
	}
	for _, match := range matches {
		// yt-dlp leaves .part files behind when interrupted.
		if strings.HasSuffix(match, ".part") || strings.HasSuffix(match, ".ytdl") {
			continue
		}
		return match, nil
	}
	return "", ErrNoOutput
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
