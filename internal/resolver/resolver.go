// Package resolver turns operator input (a handle, a bare name, or a profile
// URL) into a channel identity using a single top-1 channel search.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"tubeinsight/internal/logging"
	"tubeinsight/internal/registry"
	"tubeinsight/internal/services"
	"tubeinsight/internal/youtube"
)

var (
	// ErrNotFound reports that the search returned no channel.
	ErrNotFound = fmt.Errorf("%w: no channel matched", services.ErrNotFound)
	// ErrEmptyInput reports blank operator input.
	ErrEmptyInput = fmt.Errorf("%w: channel handle or URL is required", services.ErrValidation)
)

// APIFailure wraps a transport, auth, or quota failure from the search API.
type APIFailure struct {
	Detail string
	Err    error
}

func (e *APIFailure) Error() string {
	return "channel lookup failed: " + e.Detail
}

func (e *APIFailure) Unwrap() error { return e.Err }

// Is lets callers classify the failure as transient with errors.Is.
func (e *APIFailure) Is(target error) bool { return target == services.ErrTransient }

// Identity is the canonical form of a resolved channel.
type Identity struct {
	ID          string
	DisplayName string
	Handle      string
}

// ToEntry converts the identity into a registry entry.
func (id Identity) ToEntry() registry.ChannelEntry {
	return registry.ChannelEntry{Name: id.DisplayName, Handle: id.Handle, ID: id.ID}
}

// Resolver looks channels up through the search boundary.
type Resolver struct {
	search youtube.Searcher
	logger *slog.Logger
}

// New constructs a resolver.
func New(search youtube.Searcher, logger *slog.Logger) *Resolver {
	return &Resolver{search: search, logger: logging.NewComponentLogger(logger, "resolver")}
}

// Resolve normalizes raw and returns the top channel match.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Identity, error) {
	query := Normalize(raw)
	if query == "" {
		return Identity{}, ErrEmptyInput
	}
	items, err := r.search.Search(ctx, youtube.SearchRequest{
		Type:       youtube.TypeChannel,
		Query:      query,
		MaxResults: 1,
	})
	if err != nil {
		r.logger.Warn("channel lookup failed",
			logging.String("query", query),
			logging.Error(err),
			logging.String(logging.FieldEventType, "resolve_api_failure"),
		)
		return Identity{}, &APIFailure{Detail: describe(err), Err: err}
	}
	if len(items) == 0 {
		r.logger.Info("channel lookup found nothing", logging.String("query", query))
		return Identity{}, fmt.Errorf("%w: %s", ErrNotFound, query)
	}

	top := items[0]
	id := top.ChannelID
	if id == "" {
		id = top.ID
	}
	name := top.Title
	if strings.TrimSpace(name) == "" {
		name = top.ChannelTitle
	}
	handle := strings.TrimSpace(top.Handle)
	if handle == "" && strings.HasPrefix(query, "@") {
		handle = query
	}
	if handle != "" && !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	identity := Identity{
		ID:          strings.TrimSpace(id),
		DisplayName: norm.NFC.String(strings.TrimSpace(name)),
		Handle:      norm.NFC.String(handle),
	}
	r.logger.Info("channel resolved",
		logging.String("query", query),
		logging.String(logging.FieldChannelID, identity.ID),
		logging.String("name", identity.DisplayName),
	)
	return identity, nil
}

// Normalize converts operator input into the search query form. Profile URLs
// reduce to their handle segment, and bare names gain a leading "@". Input that
// already looks like a channel id is returned as is.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if segment, ok := segmentFromURL(s); ok {
		s = segment
	}
	s = strings.Trim(s, "/ ")
	if s == "" || looksLikeChannelID(s) {
		return s
	}
	if !strings.HasPrefix(s, "@") {
		s = "@" + s
	}
	return s
}

func segmentFromURL(s string) (string, bool) {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		// Scheme-less profile links such as "www.youtube.com/@creator".
		if !strings.Contains(s, "/") || strings.HasPrefix(s, "@") {
			return "", false
		}
		s = "https://" + s
	}
	parsed, err := url.Parse(s)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	var segments []string
	for _, part := range strings.Split(parsed.Path, "/") {
		if part = strings.TrimSpace(part); part != "" {
			if unescaped, err := url.PathUnescape(part); err == nil {
				part = unescaped
			}
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return "", true
	}
	for _, segment := range segments {
		if strings.HasPrefix(segment, "@") {
			return segment, true
		}
	}
	for i, segment := range segments[:len(segments)-1] {
		switch strings.ToLower(segment) {
		case "channel", "c", "user":
			return segments[i+1], true
		}
	}
	return segments[len(segments)-1], true
}

func looksLikeChannelID(s string) bool {
	if len(s) != 24 || !strings.HasPrefix(s, "UC") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func describe(err error) string {
	var apiErr *youtube.APIError
	if errors.As(err, &apiErr) {
		if apiErr.QuotaExceeded() {
			return "search quota exhausted: " + apiErr.Message
		}
		return apiErr.Error()
	}
	return err.Error()
}
