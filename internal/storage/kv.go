// Package storage is the durable key-value boundary: three logical records
// (user, transactions, budget) mapped to JSON-encoded string values.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Logical record keys. The adapter gives no transactional guarantee
// across keys.
const (
	KeyUser         = "user"
	KeyTransactions = "transactions"
	KeyBudget       = "budget"
)

// KV is the persistence contract the state store writes through.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

const (
	writeAttempts = 3
	retryBackoff  = 50 * time.Millisecond
)

// SQLiteKV stores records in a single-file SQLite database.
type SQLiteKV struct {
	db *sql.DB
}

func NewSQLiteKV(dbPath string) (*SQLiteKV, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the stored value, reporting absence separately from failure.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get record %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the record, retrying transient write failures a bounded
// number of times before reporting the final error.
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO records (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("set record %q: %w", key, err)
	}
	return nil
}

// Remove deletes the record. Removing an absent key is not an error.
func (s *SQLiteKV) Remove(ctx context.Context, key string) error {
	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove record %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt == writeAttempts {
			return err
		}
		slog.WarnContext(ctx, "Transient storage write failure, retrying",
			"attempt", attempt, "error", err)
		select {
		case <-time.After(retryBackoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// isTransient reports whether the error is a lock-contention class failure
// worth retrying.
func isTransient(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED") ||
		strings.Contains(msg, "database is locked")
}
