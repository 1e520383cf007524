// Package preflight provides readiness checks for the external tools, APIs
// and filesystem paths tubeinsight depends on.
//
// The CLI "tubeinsight preflight" command prints every result, and the report
// workflow runs the same checks before touching the network so a missing API
// key fails fast instead of after the first channel.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
