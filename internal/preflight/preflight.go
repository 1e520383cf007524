package preflight

import (
	"context"

	"tubeinsight/internal/config"
	"tubeinsight/internal/objstore"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Optional bool
}

// Options tunes RunAll.
type Options struct {
	// SkipLLM skips the network round trip to the chat completion API.
	SkipLLM bool
	// Registry, when non-nil, is read once to confirm the backend answers.
	Registry objstore.Backend
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir),
		CheckCredential("YouTube API key", cfg.YouTube.APIKey),
	}

	for _, status := range CheckBinaries(requirements(cfg)) {
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Detail:   status.summary(),
			Optional: status.Optional,
		})
	}

	if opts.Registry != nil {
		results = append(results, CheckRegistry(ctx, cfg.Registry.Backend, opts.Registry))
	}

	if !opts.SkipLLM {
		results = append(results, CheckLLM(ctx, "LLM", cfg.LLM))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}

func requirements(cfg *config.Config) []Requirement {
	if !cfg.Audio.Enabled {
		return nil
	}
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Audio.YtDlpBinary,
			Description: "Required for the audio transcription fallback",
		},
		{
			Name:        "uvx",
			Command:     cfg.WhisperXBinary(),
			Description: "Launches WhisperX for speech-to-text",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Normalizes downloaded audio for WhisperX",
		},
	}
}
