package http

import (
	"net/http"
	"time"

	"expensetracker/internal/core"
)

type totalsView struct {
	IncomeCents   int64  `json:"incomeCents"`
	ExpensesCents int64  `json:"expensesCents"`
	BalanceCents  int64  `json:"balanceCents"`
	Income        string `json:"income"`
	Expenses      string `json:"expenses"`
	Balance       string `json:"balance"`
}

func newTotalsView(t core.Totals) totalsView {
	return totalsView{
		IncomeCents:   t.Income.Cents,
		ExpensesCents: t.Expenses.Cents,
		BalanceCents:  t.Balance.Cents,
		Income:        core.FormatCurrency(t.Income),
		Expenses:      core.FormatCurrency(t.Expenses),
		Balance:       core.FormatCurrency(t.Balance),
	}
}

type dashboardResponse struct {
	Totals        totalsView        `json:"totals"`
	MonthlyTotals totalsView        `json:"monthlyTotals"`
	BudgetCents   int64             `json:"budgetCents"`
	Budget        string            `json:"budget"`
	BudgetUsage   float64           `json:"budgetUsage"`
	BudgetWarning bool              `json:"budgetWarning"`
	Recent        []transactionView `json:"recent"`
}

const recentCount = 5

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	key := s.monthKey(now)
	if cached, ok := s.dashboardCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	snap := s.store.Snapshot()
	monthly := core.MonthlyTransactions(snap.Transactions, now)
	monthlyTotals := core.CalculateTotals(monthly)

	recent := snap.Transactions
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}

	resp := dashboardResponse{
		Totals:        newTotalsView(core.CalculateTotals(snap.Transactions)),
		MonthlyTotals: newTotalsView(monthlyTotals),
		BudgetCents:   snap.MonthlyBudget.Cents,
		Budget:        core.FormatCurrency(snap.MonthlyBudget),
		BudgetUsage:   core.BudgetUsage(monthlyTotals.Expenses, snap.MonthlyBudget),
		BudgetWarning: core.BudgetWarning(monthlyTotals.Expenses, snap.MonthlyBudget),
		Recent:        newTransactionViews(recent, now),
	}

	s.dashboardCache.Set(key, resp)
	respondJSON(w, http.StatusOK, resp)
}

type categoryBreakdownView struct {
	Category core.Category `json:"category"`
	Icon     string        `json:"icon"`
	Cents    int64         `json:"amountCents"`
	Amount   string        `json:"amount"`
}

type analyticsResponse struct {
	Breakdown   []categoryBreakdownView `json:"breakdown"`
	TopCategory *categoryBreakdownView  `json:"topCategory"`
	SavingsRate float64                 `json:"savingsRate"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	key := s.monthKey(now)
	if cached, ok := s.analyticsCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	snap := s.store.Snapshot()
	monthly := core.MonthlyTransactions(snap.Transactions, now)
	breakdown := core.CategoryBreakdown(monthly)

	views := make([]categoryBreakdownView, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		views = append(views, categoryBreakdownView{
			Category: c,
			Icon:     core.CategoryIcon(c),
			Cents:    breakdown[c].Cents,
			Amount:   core.FormatCurrency(breakdown[c]),
		})
	}

	resp := analyticsResponse{
		Breakdown:   views,
		SavingsRate: core.SavingsRate(core.CalculateTotals(monthly)),
	}
	if top, amount, ok := core.TopCategory(breakdown); ok {
		resp.TopCategory = &categoryBreakdownView{
			Category: top,
			Icon:     core.CategoryIcon(top),
			Cents:    amount.Cents,
			Amount:   core.FormatCurrency(amount),
		}
	}

	s.analyticsCache.Set(key, resp)
	respondJSON(w, http.StatusOK, resp)
}
