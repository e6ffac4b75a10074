package store

import (
	"context"
	"sync"
)

// Memory is a process-local medium. The mutex only guards the byte slice;
// it does not make load-modify-save cycles atomic.
type Memory struct {
	mu  sync.Mutex
	doc []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil, nil
	}
	return append([]byte(nil), m.doc...), nil
}

func (m *Memory) Write(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = append([]byte(nil), doc...)
	return nil
}
