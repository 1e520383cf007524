// Package whisperx turns a downloaded audio artifact into plain text using
// WhisperX launched through uvx.
//
// The source audio is first normalized with ffmpeg into a mono 16kHz WAV next
// to the WhisperX output, then transcribed; the JSON output's segments are
// joined into a single text blob. Callers own the working directory and are
// responsible for removing it.
package whisperx
