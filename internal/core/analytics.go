package core

import (
	"sort"
	"strings"
	"time"
)

// Totals aggregates a transaction list by type.
type Totals struct {
	Income   Money `json:"incomeCents"`
	Expenses Money `json:"expensesCents"`
	Balance  Money `json:"balanceCents"`
}

// BudgetWarningThreshold is the usage ratio above which the dashboard
// shows the over-budget warning.
const BudgetWarningThreshold = 0.8

// CalculateTotals sums income and expense amounts; balance is income
// minus expenses. An empty list yields all zeros.
func CalculateTotals(transactions []Transaction) Totals {
	var t Totals
	for _, txn := range transactions {
		switch txn.Type {
		case Income:
			t.Income = t.Income.Add(txn.Amount)
		case Expense:
			t.Expenses = t.Expenses.Add(txn.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}

// MonthlyTransactions filters to records dated in the same calendar month
// and year as now. This is a calendar window, not a rolling 30 days;
// callers inject now so the result is deterministic under test.
func MonthlyTransactions(transactions []Transaction, now time.Time) []Transaction {
	year, month := now.Year(), now.Month()
	var out []Transaction
	for _, txn := range transactions {
		if txn.Date.Year() == year && txn.Date.Month() == month {
			out = append(out, txn)
		}
	}
	return out
}

// CategoryBreakdown sums expense amounts per category. Every category
// appears in the result, zero-valued if unused.
func CategoryBreakdown(transactions []Transaction) map[Category]Money {
	breakdown := make(map[Category]Money, len(Categories()))
	for _, c := range Categories() {
		breakdown[c] = Money{}
	}
	for _, txn := range transactions {
		if txn.Type != Expense {
			continue
		}
		breakdown[txn.Category] = breakdown[txn.Category].Add(txn.Amount)
	}
	return breakdown
}

// FilterTransactions AND-combines every supplied filter: inclusive date
// range, exact category and type match, and case-insensitive substring
// search over title, category, and notes.
func FilterTransactions(transactions []Transaction, opts FilterOptions) []Transaction {
	query := strings.ToLower(strings.TrimSpace(opts.SearchQuery))
	var out []Transaction
	for _, txn := range transactions {
		if opts.DateRange != nil {
			if txn.Date.Before(opts.DateRange.Start.Time) || txn.Date.After(opts.DateRange.End.Time) {
				continue
			}
		}
		if opts.Category != nil && txn.Category != *opts.Category {
			continue
		}
		if opts.Type != nil && txn.Type != *opts.Type {
			continue
		}
		if query != "" && !matchesQuery(txn, query) {
			continue
		}
		out = append(out, txn)
	}
	return out
}

func matchesQuery(txn Transaction, query string) bool {
	if strings.Contains(strings.ToLower(txn.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(string(txn.Category)), query) {
		return true
	}
	return txn.Notes != "" && strings.Contains(strings.ToLower(txn.Notes), query)
}

// CategoryIcon maps each category to its client-side icon identifier.
func CategoryIcon(c Category) string {
	switch c {
	case Food:
		return "fast-food-outline"
	case Travel:
		return "airplane-outline"
	case Bills:
		return "receipt-outline"
	case Shopping:
		return "cart-outline"
	case Health:
		return "fitness-outline"
	default:
		return "ellipsis-horizontal-outline"
	}
}

// BudgetUsage returns expenses as a fraction of budget, 0 when no budget
// is set.
func BudgetUsage(expenses, budget Money) float64 {
	if budget.Cents <= 0 {
		return 0
	}
	return float64(expenses.Cents) / float64(budget.Cents)
}

// BudgetWarning reports whether expenses exceed 80% of budget.
func BudgetWarning(expenses, budget Money) bool {
	return BudgetUsage(expenses, budget) > BudgetWarningThreshold
}

// TopCategory returns the category with the highest expense total in the
// breakdown. Ties resolve to the earlier category in display order; a
// breakdown with no spending returns ok=false.
func TopCategory(breakdown map[Category]Money) (Category, Money, bool) {
	var top Category
	var max Money
	found := false
	for _, c := range Categories() {
		amount := breakdown[c]
		if amount.Cents > max.Cents {
			top, max, found = c, amount, true
		}
	}
	return top, max, found
}

// SavingsRate returns the saved fraction of income, 0 when there is no
// income. Negative when spending exceeds income.
func SavingsRate(t Totals) float64 {
	if t.Income.Cents <= 0 {
		return 0
	}
	return float64(t.Balance.Cents) / float64(t.Income.Cents)
}

// SortedByDate returns a copy ordered date-descending. Insertion order is
// preserved within a day (sort is stable, list is most-recent-first).
func SortedByDate(transactions []Transaction) []Transaction {
	out := make([]Transaction, len(transactions))
	copy(out, transactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
