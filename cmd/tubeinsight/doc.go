// Package main hosts the tubeinsight CLI entrypoint and command graph.
//
// The Cobra command tree covers configuration scaffolding, channel registry
// maintenance, single-channel and single-video probes, the batch report run,
// and environment preflight. Configuration resolution and logger setup live in
// commandContext so subcommands only wire internal packages to terminal output.
package main
