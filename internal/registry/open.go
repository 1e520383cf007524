package registry

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"tubeinsight/internal/config"
	"tubeinsight/internal/objstore"
	"tubeinsight/internal/objstore/filestore"
	"tubeinsight/internal/objstore/github"
	"tubeinsight/internal/objstore/sqlitestore"
)

const sqliteDocumentName = "channels"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenBackend builds the configured storage backend. The returned closer
// releases backend resources and is always non-nil on success.
func OpenBackend(cfg *config.Config) (objstore.Backend, io.Closer, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("registry: config is required")
	}
	switch cfg.Registry.Backend {
	case "file", "":
		return filestore.New(cfg.Registry.Path), nopCloser{}, nil
	case "sqlite":
		db, err := sqlitestore.Open(cfg.Registry.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open registry database: %w", err)
		}
		return db.Document(sqliteDocumentName), db, nil
	case "github":
		path := strings.TrimSpace(cfg.Registry.Path)
		if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, "~") {
			path = "channels." + cfg.Registry.Format
		}
		return github.New(github.Config{
			APIURL: cfg.Registry.GitHubAPIURL,
			Owner:  cfg.Registry.GitHubOwner,
			Repo:   cfg.Registry.GitHubRepo,
			Branch: cfg.Registry.GitHubBranch,
			Path:   path,
			Token:  cfg.Registry.GitHubToken,
		}, nil), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("registry: unsupported backend %q", cfg.Registry.Backend)
	}
}

// Open builds a Store for the configured backend and format.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, io.Closer, error) {
	backend, closer, err := OpenBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	codec, err := CodecFor(cfg.Registry.Format)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return NewStore(backend, codec, logger), closer, nil
}
