package objstore

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Backend. Version tokens are "t1", "t2", and so on,
// advancing on every successful write.
type Memory struct {
	mu       sync.Mutex
	data     []byte
	version  string
	exists   bool
	counter  int
	messages []string
}

// NewMemory returns an empty store. When initial is non-nil the store starts
// with that content at version "t1".
func NewMemory(initial []byte) *Memory {
	m := &Memory{}
	if initial != nil {
		m.commit(initial, "seed")
	}
	return m
}

func (m *Memory) Read(ctx context.Context) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return Object{}, ErrNotFound
	}
	return Object{Data: bytes.Clone(m.data), Version: m.version}, nil
}

func (m *Memory) Write(ctx context.Context, data []byte, message, version string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case version == "" && m.exists:
		return "", ErrConflict
	case version != "" && (!m.exists || version != m.version):
		return "", ErrConflict
	}
	m.commit(data, message)
	return m.version, nil
}

// Messages returns the commit messages recorded by successful writes.
func (m *Memory) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func (m *Memory) commit(data []byte, message string) {
	m.counter++
	m.data = bytes.Clone(data)
	m.version = fmt.Sprintf("t%d", m.counter)
	m.exists = true
	m.messages = append(m.messages, message)
}
