package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"expensetracker/internal/storage"
	"expensetracker/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.New(storage.NewMemoryKV())
	srv := NewServer(":0", st, Options{RateLimitPerMinute: 10000})
	t.Cleanup(func() { srv.rateLimiter.stop(); srv.cacheManager.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func createTransaction(t *testing.T, srv *Server, title, amount, typ, category, date string) transactionView {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"amount":%q,"type":%q,"category":%q,"date":%q}`,
		title, amount, typ, category, date)
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var view transactionView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return view
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("health status=%d", rr.Code)
	}
}

func TestLoginSessionLogout(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/login", `{"name":"Alice"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	var session sessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.User == nil || session.User.Name != "Alice" || !session.User.IsAuthenticated {
		t.Fatalf("unexpected session %+v", session.User)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/session", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Alice") {
		t.Fatalf("session status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/logout", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("logout status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/session", "")
	if !strings.Contains(rr.Body.String(), `"user":null`) {
		t.Fatalf("expected logged out session, got %s", rr.Body.String())
	}
}

func TestLoginValidation(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/login", `{"name":"   "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/login", `{name}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := newTestServer(t)

	view := createTransaction(t, srv, "Grocery shopping", "45.50", "expense", "Food", "2025-03-10")
	if view.ID == "" {
		t.Fatal("missing id")
	}
	if view.AmountCents != 4550 || view.AmountDisplay != "$45.50" {
		t.Fatalf("unexpected amount %d / %s", view.AmountCents, view.AmountDisplay)
	}
	if view.CategoryIcon != "fast-food-outline" {
		t.Fatalf("unexpected icon %s", view.CategoryIcon)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad amount", `{"title":"a","amount":"-5","type":"expense","category":"Food","date":"2025-03-10"}`},
		{"zero amount", `{"title":"a","amount":"0","type":"expense","category":"Food","date":"2025-03-10"}`},
		{"bad type", `{"title":"a","amount":"1","type":"transfer","category":"Food","date":"2025-03-10"}`},
		{"bad category", `{"title":"a","amount":"1","type":"expense","category":"Gadgets","date":"2025-03-10"}`},
		{"bad date", `{"title":"a","amount":"1","type":"expense","category":"Food","date":"10/03/2025"}`},
		{"empty title", `{"title":"  ","amount":"1","type":"expense","category":"Food","date":"2025-03-10"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/api/transactions", tc.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)
	view := createTransaction(t, srv, "Lunch", "12.00", "expense", "Food", "2025-03-10")

	body := `{"title":"Team lunch","amount":"18.00","type":"expense","category":"Food","date":"2025-03-10"}`
	rr := doJSON(t, srv, http.MethodPut, "/api/transactions/"+view.ID, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Team lunch") {
		t.Fatalf("update not reflected: %s", rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/transactions/missing", body)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+view.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+view.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "Grocery shopping", "45.50", "expense", "Food", "2025-03-10")
	createTransaction(t, srv, "Salary", "5000", "income", "Other", "2025-03-01")
	createTransaction(t, srv, "Flight", "210", "expense", "Travel", "2025-02-20")

	var list transactionListResponse
	rr := doJSON(t, srv, http.MethodGet, "/api/transactions?q=grocery", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || list.Transactions[0].Title != "Grocery shopping" {
		t.Fatalf("unexpected search result %+v", list)
	}

	// Search combines with the type filter instead of overriding it.
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?type=income&q=grocery", "")
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if list.Total != 0 {
		t.Fatalf("expected no income match for grocery, got %d", list.Total)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?from=2025-03-01&to=2025-03-31&type=expense", "")
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if list.Total != 1 || list.Transactions[0].Title != "Grocery shopping" {
		t.Fatalf("unexpected range result %+v", list)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?category=Gadgets", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad category, got %d", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)
	today := time.Now().Format("2006-01-02")

	rr := doJSON(t, srv, http.MethodPut, "/api/budget", `{"amount":"1000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("budget status=%d body=%s", rr.Code, rr.Body.String())
	}
	createTransaction(t, srv, "Rent", "850", "expense", "Bills", today)

	var dash dashboardResponse
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !dash.BudgetWarning {
		t.Fatalf("850 of 1000 must warn: %+v", dash)
	}
	if dash.MonthlyTotals.ExpensesCents != 85000 {
		t.Fatalf("unexpected monthly expenses %d", dash.MonthlyTotals.ExpensesCents)
	}
	if len(dash.Recent) != 1 || dash.Recent[0].DateDisplay != "Today" {
		t.Fatalf("unexpected recent %+v", dash.Recent)
	}

	// The cached dashboard must not survive a mutation.
	createTransaction(t, srv, "Coffee", "4.00", "expense", "Food", today)
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	_ = json.Unmarshal(rr.Body.Bytes(), &dash)
	if dash.MonthlyTotals.ExpensesCents != 85400 {
		t.Fatalf("stale dashboard after mutation: %d", dash.MonthlyTotals.ExpensesCents)
	}
}

func TestAnalytics(t *testing.T) {
	srv := newTestServer(t)
	today := time.Now().Format("2006-01-02")
	createTransaction(t, srv, "Salary", "4000", "income", "Other", today)
	createTransaction(t, srv, "Groceries", "300", "expense", "Food", today)
	createTransaction(t, srv, "Cinema", "40", "expense", "Shopping", today)

	var analytics analyticsResponse
	rr := doJSON(t, srv, http.MethodGet, "/api/analytics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &analytics); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(analytics.Breakdown) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(analytics.Breakdown))
	}
	if analytics.TopCategory == nil || analytics.TopCategory.Category != "Food" {
		t.Fatalf("unexpected top category %+v", analytics.TopCategory)
	}
	if analytics.SavingsRate != 0.915 {
		t.Fatalf("unexpected savings rate %v", analytics.SavingsRate)
	}
}

func TestBudgetValidation(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPut, "/api/budget", `{"amount":"0"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestResetAndExport(t *testing.T) {
	srv := newTestServer(t)
	createTransaction(t, srv, "Gone soon", "10", "expense", "Other", "2025-03-10")

	rr := doJSON(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "expense-export.json") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	var export struct {
		Transactions []json.RawMessage `json:"transactions"`
		ExportDate   string            `json:"exportDate"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(export.Transactions) != 1 || export.ExportDate == "" {
		t.Fatalf("unexpected export %+v", export)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/reset", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("reset status=%d", rr.Code)
	}
	var list transactionListResponse
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if list.Total != 0 {
		t.Fatalf("expected empty list after reset, got %d", list.Total)
	}
}

func TestRateLimit(t *testing.T) {
	st := store.New(storage.NewMemoryKV())
	srv := NewServer(":0", st, Options{RateLimitPerMinute: 2})
	t.Cleanup(func() { srv.rateLimiter.stop(); srv.cacheManager.Stop() })

	var last int
	for i := 0; i < 3; i++ {
		rr := doJSON(t, srv, http.MethodGet, "/api/session", "")
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third request, got %d", last)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/api/login", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
