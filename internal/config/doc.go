// Package config loads, normalizes, and validates tubeinsight configuration.
//
// Configuration lives in a single TOML file. Load applies repository defaults,
// decodes the file when present, expands paths, pulls secrets from the
// environment when the file leaves them blank, and validates the result.
// CreateSample writes the embedded sample used by `tubeinsight config init`.
package config
