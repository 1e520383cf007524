package captions

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tubeinsight/internal/logging"
)

const (
	defaultWatchBaseURL   = "https://www.youtube.com"
	defaultHTTPTimeout    = 20 * time.Second
	playerResponseMarker  = "ytInitialPlayerResponse = "
	maxWatchPageBytes     = 6 * 1024 * 1024
	maxTimedTextBytes     = 2 * 1024 * 1024
	browserUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.9"
)

// HTTPDoer describes the HTTP client used for page and caption requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client lists, fetches, and translates caption tracks.
type Client struct {
	watchBaseURL string
	http         HTTPDoer
	logger       *slog.Logger
}

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

// WithWatchBaseURL points track listing at a different host.
func WithWatchBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.watchBaseURL = trimmed
		}
	}
}

// NewClient constructs a caption client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		watchBaseURL: defaultWatchBaseURL,
		http:         &http.Client{Timeout: defaultHTTPTimeout},
		logger:       logging.NewComponentLogger(logger, "captions"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type playerResponse struct {
	Captions *struct {
		Renderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
				Translatable bool   `json:"isTranslatable"`
				Name         struct {
					SimpleText string `json:"simpleText"`
					Runs       []struct {
						Text string `json:"text"`
					} `json:"runs"`
				} `json:"name"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// Tracks lists the caption tracks published for videoID.
func (c *Client) Tracks(ctx context.Context, videoID string) ([]Track, error) {
	watchURL := c.watchBaseURL + "/watch?v=" + url.QueryEscape(videoID)
	body, err := c.get(ctx, watchURL, maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	raw := extractJSON(body[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}
	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil || len(player.Captions.Renderer.CaptionTracks) == 0 {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w (%s)", ErrNoCaptions, player.PlayabilityStatus.Reason)
		}
		return nil, ErrNoCaptions
	}

	tracks := make([]Track, 0, len(player.Captions.Renderer.CaptionTracks))
	for _, rawTrack := range player.Captions.Renderer.CaptionTracks {
		name := rawTrack.Name.SimpleText
		if name == "" {
			var sb strings.Builder
			for _, run := range rawTrack.Name.Runs {
				sb.WriteString(run.Text)
			}
			name = sb.String()
		}
		tracks = append(tracks, Track{
			LanguageCode: rawTrack.LanguageCode,
			Name:         name,
			Kind:         rawTrack.Kind,
			BaseURL:      rawTrack.BaseURL,
			Translatable: rawTrack.Translatable,
		})
	}
	c.logger.Debug("caption tracks listed",
		logging.String(logging.FieldVideoID, videoID),
		logging.Int("tracks", len(tracks)),
	)
	return tracks, nil
}

// Fetch returns the best track of videoID in one of languages, tried in order.
func (c *Client) Fetch(ctx context.Context, videoID string, languages []string) (Transcript, error) {
	tracks, err := c.Tracks(ctx, videoID)
	if err != nil {
		return Transcript{}, err
	}
	track, ok := SelectTrack(tracks, languages)
	if !ok {
		return Transcript{}, fmt.Errorf("%w: wanted %s", ErrLanguageUnavailable, strings.Join(languages, ","))
	}
	return c.FetchTrack(ctx, track)
}

// FetchTrack downloads and parses one track as published.
func (c *Client) FetchTrack(ctx context.Context, track Track) (Transcript, error) {
	segments, err := c.timedText(ctx, track.BaseURL, "")
	if err != nil {
		return Transcript{}, err
	}
	return Transcript{
		LanguageCode:   track.LanguageCode,
		SourceLanguage: track.LanguageCode,
		Segments:       segments,
	}, nil
}

// Translate downloads track machine-translated into target.
func (c *Client) Translate(ctx context.Context, track Track, target string) (Transcript, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Transcript{}, errors.New("translate: target language required")
	}
	if !track.Translatable {
		return Transcript{}, fmt.Errorf("%w: %s", ErrTranslationUnavailable, track.LanguageCode)
	}
	segments, err := c.timedText(ctx, track.BaseURL, target)
	if err != nil {
		return Transcript{}, err
	}
	return Transcript{
		LanguageCode:   target,
		SourceLanguage: track.LanguageCode,
		Translated:     true,
		Segments:       segments,
	}, nil
}

type timedTextDoc struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
	Paragraphs []struct {
		T     string `xml:"t,attr"`
		D     string `xml:"d,attr"`
		Text  string `xml:",chardata"`
		Spans []struct {
			Text string `xml:",chardata"`
		} `xml:"s"`
	} `xml:"body>p"`
}

func (c *Client) timedText(ctx context.Context, baseURL, translateTo string) ([]Segment, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("timedtext: track has no url")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("timedtext: parse url: %w", err)
	}
	query := parsed.Query()
	// srv1 XML is the default when fmt is absent.
	query.Del("fmt")
	if translateTo != "" {
		query.Set("tlang", translateTo)
	}
	parsed.RawQuery = query.Encode()

	body, err := c.get(ctx, parsed.String(), maxTimedTextBytes)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyTranscript
	}
	segments, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ErrEmptyTranscript
	}
	return segments, nil
}

func parseTimedText(body []byte) ([]Segment, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	segments := make([]Segment, 0, len(doc.Lines)+len(doc.Paragraphs))
	for _, line := range doc.Lines {
		text := cleanCaption(line.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start:    parseSeconds(line.Start),
			Duration: parseSeconds(line.Dur),
			Text:     text,
		})
	}
	for _, p := range doc.Paragraphs {
		raw := p.Text
		for _, span := range p.Spans {
			raw += span.Text
		}
		text := cleanCaption(raw)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start:    parseMillis(p.T),
			Duration: parseMillis(p.D),
			Text:     text,
		})
	}
	return segments, nil
}

// cleanCaption decodes entities that survive XML decoding (timedtext
// double-escapes apostrophes and ampersands) and collapses whitespace.
func cleanCaption(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func parseSeconds(v string) time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func parseMillis(v string) time.Duration {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

func (c *Client) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", defaultAcceptLanguage)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return body, nil
}

// extractJSON returns the balanced JSON object at the start of b, or nil.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
