// Package youtube is a small client for the YouTube Data API v3 search
// endpoint. Requests share a token-bucket limiter because the API is
// quota-bearing; the client never retries on its own.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://www.googleapis.com/youtube/v3"
	defaultHTTPTimeout = 20 * time.Second
)

// HTTPDoer describes the HTTP client used by the search client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResultType filters search results.
type ResultType string

const (
	TypeChannel ResultType = "channel"
	TypeVideo   ResultType = "video"
)

// SearchRequest carries the parameters the core uses. Zero values are omitted.
type SearchRequest struct {
	Type           ResultType
	Query          string
	ChannelID      string
	PublishedAfter time.Time
	Order          string
	MaxResults     int
}

// SearchItem is one result in relevance or requested order.
type SearchItem struct {
	Kind         ResultType
	ID           string
	ChannelID    string
	Title        string
	ChannelTitle string
	Handle       string
	PublishedAt  time.Time
}

// Searcher is the search boundary consumed by the resolver and finder.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchItem, error)
}

// Client calls the search endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    HTTPDoer
	limiter *rate.Limiter
}

var _ Searcher = (*Client)(nil)

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRateLimit caps requests per second. Non-positive values disable limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient constructs a search client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Items []struct {
		ID struct {
			Kind      string `json:"kind"`
			VideoID   string `json:"videoId"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
		Snippet struct {
			PublishedAt  string `json:"publishedAt"`
			ChannelID    string `json:"channelId"`
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			CustomURL    string `json:"customUrl"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search issues one search request.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchItem, error) {
	if c.apiKey == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Reason: "missingKey", Message: "youtube api key is not configured"}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("youtube search: rate limiter: %w", err)
		}
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("key", c.apiKey)
	if req.Type != "" {
		params.Set("type", string(req.Type))
	}
	if req.Query != "" {
		params.Set("q", req.Query)
	}
	if req.ChannelID != "" {
		params.Set("channelId", req.ChannelID)
	}
	if !req.PublishedAfter.IsZero() {
		params.Set("publishedAfter", req.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if req.Order != "" {
		params.Set("order", req.Order)
	}
	if req.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(req.MaxResults))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube search: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("youtube search: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("youtube search: decode response: %w", err)
	}

	items := make([]SearchItem, 0, len(decoded.Items))
	for _, raw := range decoded.Items {
		item := SearchItem{
			ChannelID:    raw.Snippet.ChannelID,
			Title:        html.UnescapeString(raw.Snippet.Title),
			ChannelTitle: html.UnescapeString(raw.Snippet.ChannelTitle),
			Handle:       raw.Snippet.CustomURL,
		}
		switch {
		case raw.ID.VideoID != "":
			item.Kind = TypeVideo
			item.ID = raw.ID.VideoID
		case raw.ID.ChannelID != "":
			item.Kind = TypeChannel
			item.ID = raw.ID.ChannelID
			if item.ChannelID == "" {
				item.ChannelID = raw.ID.ChannelID
			}
		default:
			continue
		}
		if raw.Snippet.PublishedAt != "" {
			if ts, err := time.Parse(time.RFC3339, raw.Snippet.PublishedAt); err == nil {
				item.PublishedAt = ts
			}
		}
		items = append(items, item)
	}
	return items, nil
}
