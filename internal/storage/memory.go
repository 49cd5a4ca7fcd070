package storage

import (
	"context"
	"sync"
)

// MemoryKV is an in-process KV implementation. It backs the "memory"
// data backend and the store tests; nothing survives a restart.
type MemoryKV struct {
	mu      sync.Mutex
	records map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{records: make(map[string]string)}
}

func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.records[key]
	return value, ok, nil
}

func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

func (s *MemoryKV) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
