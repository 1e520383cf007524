// Package github stores a single document in a GitHub repository through the
// contents API. The blob SHA of the file is the version token, so a write
// carrying a stale SHA is rejected by the server without touching the branch.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tubeinsight/internal/objstore"
)

const defaultAPIURL = "https://api.github.com"

// HTTPDoer describes the HTTP client used by the store.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config identifies the document.
type Config struct {
	APIURL string
	Owner  string
	Repo   string
	Branch string
	Path   string
	Token  string
}

// Store implements objstore.Backend on the contents API.
type Store struct {
	cfg    Config
	client HTTPDoer
}

var _ objstore.Backend = (*Store)(nil)

// New constructs a store. A nil client falls back to a client with a 30s timeout.
func New(cfg Config, client HTTPDoer) *Store {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	cfg.Path = strings.Trim(strings.TrimSpace(cfg.Path), "/")
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Store{cfg: cfg, client: client}
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Read fetches the file and its blob SHA.
func (s *Store) Read(ctx context.Context) (objstore.Object, error) {
	endpoint := s.endpoint()
	if s.cfg.Branch != "" {
		endpoint += "?ref=" + url.QueryEscape(s.cfg.Branch)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return objstore.Object{}, fmt.Errorf("build github read request: %w", err)
	}
	s.decorate(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return objstore.Object{}, fmt.Errorf("github read: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return objstore.Object{}, fmt.Errorf("github read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return objstore.Object{}, objstore.ErrNotFound
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return objstore.Object{}, fmt.Errorf("github read returned %d: %s", resp.StatusCode, snippet(body))
	}

	var payload contentResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return objstore.Object{}, fmt.Errorf("decode github content: %w", err)
	}
	if payload.Encoding != "" && payload.Encoding != "base64" {
		return objstore.Object{}, fmt.Errorf("github content: unsupported encoding %q", payload.Encoding)
	}
	// The API wraps base64 content at 60 columns.
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return objstore.Object{}, fmt.Errorf("decode github content: %w", err)
	}
	return objstore.Object{Data: data, Version: payload.SHA}, nil
}

// Write commits data with message. The server rejects the commit when version
// no longer matches the file's blob SHA.
func (s *Store) Write(ctx context.Context, data []byte, message, version string) (string, error) {
	payload := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     version,
		Branch:  s.cfg.Branch,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode github write: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.endpoint(), bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build github write request: %w", err)
	}
	s.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("github write: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("github write body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return "", objstore.ErrConflict
	case resp.StatusCode == http.StatusUnprocessableEntity && isShaMismatch(body):
		return "", objstore.ErrConflict
	case resp.StatusCode >= http.StatusMultipleChoices:
		return "", fmt.Errorf("github write returned %d: %s", resp.StatusCode, snippet(body))
	}

	var result putResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode github write response: %w", err)
	}
	if result.Content.SHA == "" {
		return "", fmt.Errorf("github write response missing content sha")
	}
	return result.Content.SHA, nil
}

func (s *Store) endpoint() string {
	segments := strings.Split(s.cfg.Path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		s.cfg.APIURL,
		url.PathEscape(s.cfg.Owner),
		url.PathEscape(s.cfg.Repo),
		strings.Join(segments, "/"),
	)
}

func (s *Store) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
}

// isShaMismatch recognizes the 422 the contents API returns for a missing or
// stale sha on an existing file.
func isShaMismatch(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "sha") && (strings.Contains(lower, "does not match") || strings.Contains(lower, "wasn't supplied"))
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
