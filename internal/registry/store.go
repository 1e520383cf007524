package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tubeinsight/internal/logging"
	"tubeinsight/internal/objstore"
	"tubeinsight/internal/services"
)

// Store reads and writes the registry document.
type Store struct {
	backend objstore.Backend
	codec   Codec
	logger  *slog.Logger
}

// NewStore wraps backend. A nil codec selects JSON; a nil logger discards output.
func NewStore(backend objstore.Backend, codec Codec, logger *slog.Logger) *Store {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Store{
		backend: backend,
		codec:   codec,
		logger:  logging.NewComponentLogger(logger, "registry"),
	}
}

// Load fetches and decodes the registry. A missing document is an empty
// registry with an empty version. On read or decode failure Load returns an
// empty snapshot together with the error so callers can continue with zero
// channels.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	obj, err := s.backend.Read(ctx)
	if errors.Is(err, objstore.ErrNotFound) {
		return Snapshot{Entries: []ChannelEntry{}}, nil
	}
	if err != nil {
		logging.WarnWithContext(s.logger, "registry load failed", "registry_load_failed",
			"continuing with an empty channel list", logging.Error(err))
		return Snapshot{Entries: []ChannelEntry{}}, services.Wrap(services.ErrTransient, "registry", "load", "read registry", err)
	}
	entries, err := s.codec.Decode(obj.Data)
	if err != nil {
		logging.WarnWithContext(s.logger, "registry content unreadable", "registry_decode_failed",
			"continuing with an empty channel list", logging.Error(err))
		return Snapshot{Entries: []ChannelEntry{}}, services.Wrap(services.ErrValidation, "registry", "load", "decode registry", err)
	}
	s.logger.Debug("registry loaded", logging.Int("entries", len(entries)), logging.String("version", obj.Version))
	return Snapshot{Entries: entries, Version: obj.Version}, nil
}

// Save writes entries when version is still the stored version and returns the
// new version. Invalid collections are rejected before anything is written. A
// stale version yields an error matching services.ErrConflict.
func (s *Store) Save(ctx context.Context, entries []ChannelEntry, version, message string) (string, error) {
	if err := Validate(entries); err != nil {
		return "", err
	}
	data, err := s.codec.Encode(entries)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "registry", "save", "encode registry", err)
	}
	if message == "" {
		message = fmt.Sprintf("Update channel registry (%d entries)", len(entries))
	}
	next, err := s.backend.Write(ctx, data, message, version)
	if errors.Is(err, objstore.ErrConflict) {
		logging.WarnWithContext(s.logger, "registry save rejected", "registry_conflict",
			"mutation discarded; reload and retry", logging.String("version", version))
		return "", err
	}
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "registry", "save", "write registry", err)
	}
	s.logger.Info("registry saved", logging.Int("entries", len(entries)), logging.String("version", next))
	return next, nil
}

// Mutate loads the registry, applies fn to a copy of the entries, and saves
// the result against the token from that same load. A failed load aborts the
// cycle so an unreadable registry is never overwritten.
func (s *Store) Mutate(ctx context.Context, message string, fn func([]ChannelEntry) ([]ChannelEntry, error)) (Snapshot, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	entries, err := fn(append([]ChannelEntry(nil), snap.Entries...))
	if err != nil {
		return Snapshot{}, err
	}
	version, err := s.Save(ctx, entries, snap.Version, message)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Entries: entries, Version: version}, nil
}

// Add appends entry in one load-modify-save cycle.
func (s *Store) Add(ctx context.Context, entry ChannelEntry) (Snapshot, error) {
	return s.Mutate(ctx, "Add channel "+entry.Label(), func(entries []ChannelEntry) ([]ChannelEntry, error) {
		return AddEntry(entries, entry)
	})
}

// Edit replaces the entry at index in one load-modify-save cycle.
func (s *Store) Edit(ctx context.Context, index int, entry ChannelEntry) (Snapshot, error) {
	return s.Mutate(ctx, "Edit channel "+entry.Label(), func(entries []ChannelEntry) ([]ChannelEntry, error) {
		return EditEntry(entries, index, entry)
	})
}

// Remove deletes the entry at index in one load-modify-save cycle.
func (s *Store) Remove(ctx context.Context, index int) (Snapshot, error) {
	return s.Mutate(ctx, fmt.Sprintf("Remove channel #%d", index+1), func(entries []ChannelEntry) ([]ChannelEntry, error) {
		return RemoveEntry(entries, index)
	})
}
