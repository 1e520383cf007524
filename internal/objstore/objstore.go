// Package objstore defines the optimistic-concurrency contract for a single
// path-addressed document: read returns the content plus an opaque version
// token, and a write succeeds only when the caller presents the token it last
// observed.
//
// Backends live in sub-packages (github, sqlitestore, filestore). Memory is an
// in-process backend used by tests and dry runs.
package objstore

import (
	"context"
	"fmt"

	"tubeinsight/internal/services"
)

var (
	// ErrConflict reports a stale version token. Nothing was written.
	ErrConflict = fmt.Errorf("%w: version token is stale", services.ErrConflict)
	// ErrNotFound reports that the document does not exist yet.
	ErrNotFound = fmt.Errorf("%w: object does not exist", services.ErrNotFound)
)

// Object is the content of a document paired with its version token.
type Object struct {
	Data    []byte
	Version string
}

// Backend is a versioned single-document store.
//
// Write with an empty version creates the document and fails with ErrConflict
// if it already exists. Write with a non-empty version replaces the content only
// when the stored version matches; the new token is returned. A failed write
// never leaves partial content behind.
type Backend interface {
	Read(ctx context.Context) (Object, error)
	Write(ctx context.Context, data []byte, message, version string) (string, error)
}
