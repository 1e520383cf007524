package acquisition

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"tubeinsight/internal/services"
)

// maxManualBytes caps operator-supplied transcript files.
const maxManualBytes = 8 << 20

// Manual wraps operator-supplied text as a transcript.
func Manual(text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Provenance: ProvenanceNone}, services.Wrap(services.ErrValidation, "manual_upload", "read", "transcript text is empty", nil)
	}
	return Result{Text: text, Provenance: ProvenanceManualUpload}, nil
}

// ManualFromFile reads a plain-text transcript from path.
func ManualFromFile(path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Provenance: ProvenanceNone}, fmt.Errorf("manual transcript: %w", err)
	}
	if info.Size() > maxManualBytes {
		return Result{Provenance: ProvenanceNone}, services.Wrap(services.ErrValidation, "manual_upload", "read",
			fmt.Sprintf("%s is larger than %d bytes", path, maxManualBytes), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Provenance: ProvenanceNone}, fmt.Errorf("manual transcript: %w", err)
	}
	if !utf8.Valid(data) {
		return Result{Provenance: ProvenanceNone}, services.Wrap(services.ErrValidation, "manual_upload", "read",
			path+" is not UTF-8 text", nil)
	}
	return Manual(string(data))
}
