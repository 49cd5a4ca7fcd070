// Package store owns the application state. Every mutation is persisted
// through the storage boundary before the in-memory state reflects it, so
// a caller observing success can assume durability.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// Listener receives a state snapshot after each successful mutation.
type Listener func(core.AppState)

// Store is the single writer of the AppState. Mutations serialize on the
// mutex; readers get deep-copied snapshots and never see a torn state.
type Store struct {
	mu        sync.RWMutex
	state     core.AppState
	kv        storage.KV
	now       func() time.Time
	newID     func() string
	listeners []Listener
}

// Option customizes a Store, mainly to inject the clock and ID source
// under test.
type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
		state: core.AppState{MonthlyBudget: core.DefaultMonthlyBudget},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the three persisted records on startup. Absent or corrupt
// values fall back to defaults with a logged warning; a bad record never
// prevents startup.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.read(ctx, storage.KeyUser); ok {
		var user core.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			slog.WarnContext(ctx, "Corrupt user record, staying logged out", "error", err)
		} else {
			s.state.User = &user
		}
	}

	if raw, ok := s.read(ctx, storage.KeyTransactions); ok {
		var transactions []core.Transaction
		if err := json.Unmarshal([]byte(raw), &transactions); err != nil {
			slog.WarnContext(ctx, "Corrupt transactions record, starting empty", "error", err)
		} else {
			s.state.Transactions = transactions
		}
	}

	if raw, ok := s.read(ctx, storage.KeyBudget); ok {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || cents < 0 {
			slog.WarnContext(ctx, "Corrupt budget record, using default",
				"value", raw, "error", err)
		} else {
			s.state.MonthlyBudget = core.Money{Cents: cents}
		}
	}

	slog.InfoContext(ctx, "State loaded",
		"logged_in", s.state.User != nil,
		"transactions", len(s.state.Transactions),
		"budget_cents", s.state.MonthlyBudget.Cents)
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Storage read failed, using default", "key", key, "error", err)
		return "", false
	}
	return raw, ok
}

// Login replaces any existing user with an authenticated one.
func (s *Store) Login(ctx context.Context, name string) error {
	user := core.NewUser(name)
	if err := user.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	if err := s.kv.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist user: %w", err)
	}
	s.state.User = &user
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.InfoContext(ctx, "User logged in", "name", user.Name)
	s.notify(snap)
	return nil
}

// Logout removes the persisted user record entirely.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if err := s.kv.Remove(ctx, storage.KeyUser); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove user: %w", err)
	}
	s.state.User = nil
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.InfoContext(ctx, "User logged out")
	s.notify(snap)
	return nil
}

// AddTransaction assigns a collision-resistant ID and prepends the record,
// so the list stays most-recent-first by insertion.
func (s *Store) AddTransaction(ctx context.Context, draft core.Transaction) (core.Transaction, error) {
	draft.ID = s.newID()
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	updated := make([]core.Transaction, 0, len(s.state.Transactions)+1)
	updated = append(updated, draft)
	updated = append(updated, s.state.Transactions...)

	if err := s.persistTransactions(ctx, updated); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.state.Transactions = updated
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction added",
		"id", draft.ID,
		"title", draft.Title,
		"amount_cents", draft.Amount.Cents,
		"type", draft.Type,
		"category", draft.Category)
	s.notify(snap)
	return draft, nil
}

// UpdateTransaction replaces the matching record in place; the full record
// is supplied, never a partial patch. Unknown IDs report
// ErrTransactionNotFound rather than silently succeeding.
func (s *Store) UpdateTransaction(ctx context.Context, txn core.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	index := -1
	for i, existing := range s.state.Transactions {
		if existing.ID == txn.ID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return ErrTransactionNotFound
	}

	updated := make([]core.Transaction, len(s.state.Transactions))
	copy(updated, s.state.Transactions)
	updated[index] = txn

	if err := s.persistTransactions(ctx, updated); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state.Transactions = updated
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction updated", "id", txn.ID)
	s.notify(snap)
	return nil
}

// DeleteTransaction removes the record, preserving the relative order of
// the rest. Unknown IDs report ErrTransactionNotFound.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	updated := make([]core.Transaction, 0, len(s.state.Transactions))
	found := false
	for _, existing := range s.state.Transactions {
		if existing.ID == id {
			found = true
			continue
		}
		updated = append(updated, existing)
	}
	if !found {
		s.mu.Unlock()
		return ErrTransactionNotFound
	}

	if err := s.persistTransactions(ctx, updated); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state.Transactions = updated
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.notify(snap)
	return nil
}

// SetBudget persists the monthly budget as raw cents.
func (s *Store) SetBudget(ctx context.Context, amount core.Money) error {
	if amount.Cents <= 0 {
		return core.ErrInvalidBudget
	}

	s.mu.Lock()
	if err := s.kv.Set(ctx, storage.KeyBudget, strconv.FormatInt(amount.Cents, 10)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist budget: %w", err)
	}
	s.state.MonthlyBudget = amount
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Budget updated", "budget_cents", amount.Cents)
	s.notify(snap)
	return nil
}

// ResetData clears the transaction list; user and budget stay untouched.
func (s *Store) ResetData(ctx context.Context) error {
	s.mu.Lock()
	if err := s.kv.Remove(ctx, storage.KeyTransactions); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove transactions: %w", err)
	}
	s.state.Transactions = nil
	snap := s.state.Clone()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction data reset")
	s.notify(snap)
	return nil
}

// Snapshot returns a read-only deep copy of the current state.
func (s *Store) Snapshot() core.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers a listener invoked after every successful mutation.
// Must be called before the store is shared across goroutines.
func (s *Store) Subscribe(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(snap core.AppState) {
	for _, fn := range s.listeners {
		fn(snap)
	}
}

func (s *Store) persistTransactions(ctx context.Context, transactions []core.Transaction) error {
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	raw, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyTransactions, string(raw)); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}
