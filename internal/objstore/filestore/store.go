// Package filestore keeps a versioned document in a local file. The version
// token is the hex SHA-256 of the file content; writers hold an exclusive
// advisory lock on a sibling ".lock" file while they compare and replace.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"tubeinsight/internal/objstore"
)

const lockRetryDelay = 50 * time.Millisecond

// Store implements objstore.Backend on a single file.
type Store struct {
	path string
	lock *flock.Flock
}

var _ objstore.Backend = (*Store)(nil)

// New returns a store for path. The parent directory is created on first write.
func New(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Read returns the file content and its digest.
func (s *Store) Read(ctx context.Context) (objstore.Object, error) {
	if err := s.ensureDir(); err != nil {
		return objstore.Object{}, err
	}
	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return objstore.Object{}, fmt.Errorf("acquire read lock: %w", err)
	}
	if !locked {
		return objstore.Object{}, fmt.Errorf("acquire read lock: %s is busy", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()
	return s.readUnlocked()
}

// Write replaces the file when version equals the digest of its current content.
// The new content lands through a temp file and rename so readers never see a
// partial document. The message is not stored.
func (s *Store) Write(ctx context.Context, data []byte, _ string, version string) (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("acquire write lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("acquire write lock: %s is busy", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()

	current, err := s.readUnlocked()
	switch {
	case errors.Is(err, objstore.ErrNotFound):
		if version != "" {
			return "", objstore.ErrConflict
		}
	case err != nil:
		return "", err
	case current.Version != version:
		return "", objstore.ErrConflict
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return "", fmt.Errorf("replace %s: %w", s.path, err)
	}
	return Digest(data), nil
}

// Digest returns the version token for content.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Store) readUnlocked() (objstore.Object, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return objstore.Object{}, objstore.ErrNotFound
	}
	if err != nil {
		return objstore.Object{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return objstore.Object{Data: data, Version: Digest(data)}, nil
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure registry directory: %w", err)
	}
	return nil
}
