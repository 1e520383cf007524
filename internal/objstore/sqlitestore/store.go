// Package sqlitestore keeps versioned documents in a SQLite database. Each
// write runs in a transaction whose UPDATE is conditioned on the stored
// version, so a stale token changes nothing. Every successful write appends a
// row to the revisions table with its commit message.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tubeinsight/internal/objstore"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// DB owns the SQLite connection. Documents are addressed by name through Document.
type DB struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps the write transaction and its pragmas on the same handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &DB{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *DB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *DB) Path() string {
	return s.path
}

// Document returns the backend for the named document.
func (s *DB) Document(name string) *Document {
	return &Document{db: s, name: name, newVersion: uuid.NewString, now: time.Now}
}

// Revision is one successful write recorded in the history table.
type Revision struct {
	Version   string
	Message   string
	CreatedAt time.Time
}

// Document implements objstore.Backend for one named row.
type Document struct {
	db         *DB
	name       string
	newVersion func() string
	now        func() time.Time
}

var _ objstore.Backend = (*Document)(nil)

// Read returns the stored content and its version token.
func (d *Document) Read(ctx context.Context) (objstore.Object, error) {
	var obj objstore.Object
	err := retryOnBusy(ctx, func() error {
		return d.db.db.QueryRowContext(ctx,
			"SELECT content, version FROM documents WHERE name = ?", d.name,
		).Scan(&obj.Data, &obj.Version)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return objstore.Object{}, objstore.ErrNotFound
	}
	if err != nil {
		return objstore.Object{}, fmt.Errorf("read document %q: %w", d.name, err)
	}
	return obj, nil
}

// Write replaces the content when version matches the stored token, or creates
// the row when version is empty and the row is absent.
func (d *Document) Write(ctx context.Context, data []byte, message, version string) (string, error) {
	next := d.newVersion()
	stamp := d.now().UTC().Format(time.RFC3339Nano)

	err := retryOnBusy(ctx, func() error {
		tx, err := d.db.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var res sql.Result
		if version == "" {
			res, err = tx.ExecContext(ctx,
				`INSERT INTO documents (name, content, version, updated_at) VALUES (?, ?, ?, ?)
				 ON CONFLICT(name) DO NOTHING`,
				d.name, data, next, stamp)
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE documents SET content = ?, version = ?, updated_at = ?
				 WHERE name = ? AND version = ?`,
				data, next, stamp, d.name, version)
		}
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return objstore.ErrConflict
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO revisions (name, version, message, created_at) VALUES (?, ?, ?, ?)",
			d.name, next, message, stamp); err != nil {
			return err
		}
		return tx.Commit()
	})
	if errors.Is(err, objstore.ErrConflict) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("write document %q: %w", d.name, err)
	}
	return next, nil
}

// History lists successful writes, oldest first.
func (d *Document) History(ctx context.Context) ([]Revision, error) {
	rows, err := d.db.db.QueryContext(ctx,
		"SELECT version, message, created_at FROM revisions WHERE name = ? ORDER BY id", d.name)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var (
			rev   Revision
			stamp string
		)
		if err := rows.Scan(&rev.Version, &rev.Message, &stamp); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		rev.CreatedAt, _ = time.Parse(time.RFC3339Nano, stamp)
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (s *DB) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate it)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *DB) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
