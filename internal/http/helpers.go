package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

type contextKey string

const requestIDKey contextKey = "request_id"

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondStoreError maps store failures onto HTTP statuses: validation
// errors are the caller's fault, missing IDs are 404, anything else is a
// retryable persistence failure.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrTransactionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Mutation failed", "error", err, "path", r.URL.Path)
		respondError(w, http.StatusServiceUnavailable, "could not save changes, try again")
	}
}

func isValidationError(err error) bool {
	for _, v := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidBudget,
		core.ErrInvalidDate,
		core.ErrInvalidType,
		core.ErrInvalidCategory,
		core.ErrEmptyTitle,
		core.ErrEmptyName,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// decodeBody parses a JSON request body into dst with a sane size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// parseFilterOptions builds filter options from list query parameters:
// from/to (YYYY-MM-DD), category, type, q.
func parseFilterOptions(r *http.Request) (core.FilterOptions, error) {
	var opts core.FilterOptions
	query := r.URL.Query()

	from := strings.TrimSpace(query.Get("from"))
	to := strings.TrimSpace(query.Get("to"))
	if from != "" || to != "" {
		if from == "" || to == "" {
			return opts, fmt.Errorf("both from and to are required for a date range")
		}
		start, err := core.ParseDate(from)
		if err != nil {
			return opts, fmt.Errorf("invalid from date %q", from)
		}
		end, err := core.ParseDate(to)
		if err != nil {
			return opts, fmt.Errorf("invalid to date %q", to)
		}
		opts.DateRange = &core.DateRange{Start: start, End: end}
	}

	if v := strings.TrimSpace(query.Get("category")); v != "" {
		category := core.Category(v)
		if !category.IsValid() {
			return opts, fmt.Errorf("invalid category %q", v)
		}
		opts.Category = &category
	}

	if v := strings.TrimSpace(query.Get("type")); v != "" {
		typ := core.TransactionType(v)
		if !typ.IsValid() {
			return opts, fmt.Errorf("invalid type %q", v)
		}
		opts.Type = &typ
	}

	opts.SearchQuery = query.Get("q")
	return opts, nil
}

// transactionView is the client-facing rendering of a transaction: raw
// values plus the display strings the screens show.
type transactionView struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	AmountCents   int64                `json:"amountCents"`
	AmountDisplay string               `json:"amountDisplay"`
	Type          core.TransactionType `json:"type"`
	Category      core.Category        `json:"category"`
	CategoryIcon  string               `json:"categoryIcon"`
	Date          string               `json:"date"`
	DateDisplay   string               `json:"dateDisplay"`
	Notes         string               `json:"notes,omitempty"`
}

func newTransactionView(txn core.Transaction, now time.Time) transactionView {
	return transactionView{
		ID:            txn.ID,
		Title:         txn.Title,
		AmountCents:   txn.Amount.Cents,
		AmountDisplay: core.FormatCurrency(txn.Amount),
		Type:          txn.Type,
		Category:      txn.Category,
		CategoryIcon:  core.CategoryIcon(txn.Category),
		Date:          txn.Date.String(),
		DateDisplay:   core.FormatDate(txn.Date, now),
		Notes:         txn.Notes,
	}
}

func newTransactionViews(transactions []core.Transaction, now time.Time) []transactionView {
	views := make([]transactionView, len(transactions))
	for i, txn := range transactions {
		views[i] = newTransactionView(txn, now)
	}
	return views
}
