// Package workflow runs one report: it walks the channel registry, finds each
// channel's newest video in the window, acquires a transcript, summarizes it,
// and writes the dated report.
//
// Channels are processed one after another. Every channel is tracked by its own
// session.Machine, so the run can be observed as idle → searching →
// (need_manual_upload) → analyzing → done per channel. No per-channel failure
// stops the run: search failures, exhausted acquisition and summarization
// errors each degrade to a skipped channel or a failure section.
//
// Runner depends only on small interfaces so tests can drive it without
// network access; NewRunner wires the production implementations.
package workflow
