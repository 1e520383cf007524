package testsupport

import (
	"context"
	"testing"

	"tubeinsight/internal/config"
	"tubeinsight/internal/logging"
	"tubeinsight/internal/registry"
)

// MustOpenRegistry opens the configured registry store for tests and
// registers cleanup.
func MustOpenRegistry(t testing.TB, cfg *config.Config) *registry.Store {
	t.Helper()

	store, closer, err := registry.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = closer.Close()
	})
	return store
}

// SeedRegistry appends entries to the configured registry.
func SeedRegistry(t testing.TB, cfg *config.Config, entries ...registry.ChannelEntry) registry.Snapshot {
	t.Helper()

	store := MustOpenRegistry(t, cfg)
	var snap registry.Snapshot
	for _, entry := range entries {
		var err error
		snap, err = store.Add(context.Background(), entry)
		if err != nil {
			t.Fatalf("seed registry with %s: %v", entry.Label(), err)
		}
	}
	return snap
}
