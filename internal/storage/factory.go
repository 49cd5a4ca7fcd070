package storage

import (
	"fmt"
	"log/slog"
)

// Backend selects the KV implementation.
type Backend string

const (
	SQLiteBackend Backend = "sqlite"
	MemoryBackend Backend = "memory"
)

func (b Backend) IsValid() bool {
	return b == SQLiteBackend || b == MemoryBackend
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// New builds the configured KV backend and its cleanup function.
func New(backend Backend, dbPath string, logger *slog.Logger) (KV, CleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch backend {
	case SQLiteBackend:
		kv, err := NewSQLiteKV(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", dbPath)
		return kv, kv.Close, nil
	case MemoryBackend:
		logger.Info("Initialized memory backend")
		return NewMemoryKV(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("invalid storage backend: %s", backend)
	}
}
