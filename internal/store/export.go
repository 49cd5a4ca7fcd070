package store

import (
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"
)

// ExportSnapshot is the on-demand backup payload. It is produced for the
// caller, never persisted.
type ExportSnapshot struct {
	Transactions  []core.Transaction `json:"transactions"`
	MonthlyBudget core.Money         `json:"monthlyBudget"`
	ExportDate    string             `json:"exportDate"`
}

// Export serializes the current transactions and budget, stamped with the
// store clock. Pure read; no storage side effect.
func (s *Store) Export() ([]byte, error) {
	snap := s.Snapshot()
	if snap.Transactions == nil {
		snap.Transactions = []core.Transaction{}
	}

	payload := ExportSnapshot{
		Transactions:  snap.Transactions,
		MonthlyBudget: snap.MonthlyBudget,
		ExportDate:    s.now().UTC().Format(time.RFC3339),
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return raw, nil
}
