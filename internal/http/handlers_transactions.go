package http

import (
	"net/http"
	"time"

	"expensetracker/internal/core"
)

// transactionRequest carries the editable fields; the amount arrives as a
// decimal string exactly as typed.
type transactionRequest struct {
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Title:    sanitizeInput(req.Title),
		Amount:   core.Money{Cents: cents},
		Type:     core.TransactionType(req.Type),
		Category: core.Category(req.Category),
		Date:     date,
		Notes:    sanitizeInput(req.Notes),
	}, nil
}

type transactionListResponse struct {
	Transactions []transactionView `json:"transactions"`
	Total        int               `json:"total"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	opts, err := parseFilterOptions(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.store.Snapshot()
	filtered := core.FilterTransactions(snap.Transactions, opts)
	if r.URL.Query().Get("sort") == "date" {
		filtered = core.SortedByDate(filtered)
	}

	respondJSON(w, http.StatusOK, transactionListResponse{
		Transactions: newTransactionViews(filtered, time.Now()),
		Total:        len(filtered),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft, err := req.toTransaction()
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	created, err := s.store.AddTransaction(r.Context(), draft)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionView(created, time.Now()))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	txn, err := req.toTransaction()
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	txn.ID = r.PathValue("id")

	if err := s.store.UpdateTransaction(r.Context(), txn); err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionView(txn, time.Now()))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryView struct {
	Name core.Category `json:"name"`
	Icon string        `json:"icon"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	views := make([]categoryView, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		views = append(views, categoryView{Name: c, Icon: core.CategoryIcon(c)})
	}
	respondJSON(w, http.StatusOK, views)
}
