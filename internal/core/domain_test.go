package core

import (
	"encoding/json"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		ID:       "t1",
		Title:    "Grocery shopping",
		Amount:   Money{Cents: 4550},
		Type:     Expense,
		Category: Food,
		Date:     NewDate(2025, 3, 14),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"empty title", func(tx *Transaction) { tx.Title = "  " }, ErrEmptyTitle},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"bad category", func(tx *Transaction) { tx.Category = "Gadgets" }, ErrInvalidCategory},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			txn := validTransaction()
			tc.mutate(&txn)
			if err := txn.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	if err := NewUser("Alice").Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (User{Name: "   "}).Validate(); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if u := NewUser("Alice"); !u.IsAuthenticated {
		t.Fatal("new user must be authenticated")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 14)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2025-03-14"` {
		t.Fatalf("unexpected encoding %s", raw)
	}
	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"14/03/2025"`), &back); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestTransactionJSON(t *testing.T) {
	txn := validTransaction()
	raw, err := json.Marshal(txn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Transaction
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Amount.Cents != txn.Amount.Cents || back.Title != txn.Title || back.Date.String() != txn.Date.String() {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, txn)
	}
}

func TestAppStateClone(t *testing.T) {
	u := NewUser("Alice")
	state := AppState{
		User:          &u,
		Transactions:  []Transaction{validTransaction()},
		MonthlyBudget: DefaultMonthlyBudget,
	}

	clone := state.Clone()
	clone.User.Name = "Bob"
	clone.Transactions[0].Title = "changed"

	if state.User.Name != "Alice" {
		t.Fatal("clone shares user with original")
	}
	if state.Transactions[0].Title != "Grocery shopping" {
		t.Fatal("clone shares transactions with original")
	}
}
