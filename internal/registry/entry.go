package registry

import (
	"fmt"
	"strings"

	"tubeinsight/internal/services"
)

// MaxEntries is the registry's cardinality limit.
const MaxEntries = 15

// ChannelEntry is one registered channel. ID is unique within the registry;
// Name is a display label.
type ChannelEntry struct {
	Name   string `json:"name" yaml:"name"`
	Handle string `json:"handle,omitempty" yaml:"handle,omitempty"`
	ID     string `json:"id" yaml:"id"`
}

// Label returns the name, falling back to the handle and then the id.
func (e ChannelEntry) Label() string {
	for _, v := range []string{e.Name, e.Handle, e.ID} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return "(unnamed)"
}

// Snapshot is the registry content observed at one version.
type Snapshot struct {
	Entries []ChannelEntry
	Version string
}

// Len reports the number of entries.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

var (
	ErrRegistryFull   = fmt.Errorf("%w: registry already holds %d channels", services.ErrValidation, MaxEntries)
	ErrDuplicateID    = fmt.Errorf("%w: channel id already registered", services.ErrValidation)
	ErrIndexRange     = fmt.Errorf("%w: entry index out of range", services.ErrValidation)
	ErrMissingID      = fmt.Errorf("%w: channel id is required", services.ErrValidation)
	ErrTooManyEntries = fmt.Errorf("%w: more than %d channels", services.ErrValidation, MaxEntries)
)

// Validate checks the collection invariants: at most MaxEntries entries, every
// id non-empty and unique.
func Validate(entries []ChannelEntry) error {
	if len(entries) > MaxEntries {
		return fmt.Errorf("%w (got %d)", ErrTooManyEntries, len(entries))
	}
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return fmt.Errorf("%w (entry %d)", ErrMissingID, i)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s (entries %d and %d)", ErrDuplicateID, id, prev, i)
		}
		seen[id] = i
	}
	return nil
}

// AddEntry returns a copy of entries with entry appended.
func AddEntry(entries []ChannelEntry, entry ChannelEntry) ([]ChannelEntry, error) {
	if strings.TrimSpace(entry.ID) == "" {
		return nil, ErrMissingID
	}
	if len(entries) >= MaxEntries {
		return nil, ErrRegistryFull
	}
	if indexOf(entries, entry.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, entry.ID)
	}
	out := make([]ChannelEntry, 0, len(entries)+1)
	out = append(out, entries...)
	return append(out, entry), nil
}

// EditEntry returns a copy of entries with the entry at index replaced.
func EditEntry(entries []ChannelEntry, index int, entry ChannelEntry) ([]ChannelEntry, error) {
	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexRange, index, len(entries))
	}
	if strings.TrimSpace(entry.ID) == "" {
		return nil, ErrMissingID
	}
	if at := indexOf(entries, entry.ID); at >= 0 && at != index {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, entry.ID)
	}
	out := append([]ChannelEntry(nil), entries...)
	out[index] = entry
	return out, nil
}

// RemoveEntry returns a copy of entries without the entry at index.
func RemoveEntry(entries []ChannelEntry, index int) ([]ChannelEntry, error) {
	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexRange, index, len(entries))
	}
	out := make([]ChannelEntry, 0, len(entries)-1)
	out = append(out, entries[:index]...)
	return append(out, entries[index+1:]...), nil
}

func indexOf(entries []ChannelEntry, id string) int {
	id = strings.TrimSpace(id)
	for i, entry := range entries {
		if strings.TrimSpace(entry.ID) == id {
			return i
		}
	}
	return -1
}
