// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, channel and video identifiers, and
//     stage names for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (conflict, validation, not found, transient) with errors.Is.
//   - OperatorHint, which turns a classified failure into the follow-up an
//     operator should take.
//
// Integrations with external tools live in subpackages (llm, whisperx, ytdlp).
package services
