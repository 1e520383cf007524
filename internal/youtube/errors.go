package youtube

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-200 response from the Data API.
type APIError struct {
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube api %d (%s): %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube api %d: %s", e.Status, e.Message)
}

// QuotaExceeded reports whether the daily quota or rate limit was hit.
func (e *APIError) QuotaExceeded() bool {
	switch e.Reason {
	case "quotaExceeded", "rateLimitExceeded", "dailyLimitExceeded", "userRateLimitExceeded":
		return true
	}
	return e.Status == http.StatusTooManyRequests
}

func parseAPIError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Message = payload.Error.Message
		if len(payload.Error.Errors) > 0 {
			apiErr.Reason = payload.Error.Errors[0].Reason
		}
		return apiErr
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		text = text[:512]
	}
	if text == "" {
		text = http.StatusText(status)
	}
	apiErr.Message = text
	return apiErr
}
