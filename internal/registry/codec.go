package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec converts the entry collection to and from its stored text form.
// Encodings are deterministic and keep non-ASCII text readable.
type Codec interface {
	Encode(entries []ChannelEntry) ([]byte, error)
	Decode(data []byte) ([]ChannelEntry, error)
}

// CodecFor returns the codec for "json" or "yaml".
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("registry codec: unsupported format %q", format)
	}
}

// JSONCodec stores entries as an indented JSON array.
type JSONCodec struct{}

func (JSONCodec) Encode(entries []ChannelEntry) ([]byte, error) {
	if entries == nil {
		entries = []ChannelEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode registry json: %w", err)
	}
	return buf.Bytes(), nil
}

func (JSONCodec) Decode(data []byte) ([]ChannelEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []ChannelEntry{}, nil
	}
	var entries []ChannelEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode registry json: %w", err)
	}
	if entries == nil {
		entries = []ChannelEntry{}
	}
	return entries, nil
}

// YAMLCodec stores entries as a YAML sequence.
type YAMLCodec struct{}

func (YAMLCodec) Encode(entries []ChannelEntry) ([]byte, error) {
	if entries == nil {
		entries = []ChannelEntry{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode registry yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode registry yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Decode(data []byte) ([]ChannelEntry, error) {
	var entries []ChannelEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode registry yaml: %w", err)
	}
	if entries == nil {
		entries = []ChannelEntry{}
	}
	return entries, nil
}
