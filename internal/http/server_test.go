package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"weekspend/internal/cache"
	"weekspend/internal/core"
	"weekspend/internal/ledger"
	"weekspend/internal/ledger/memory"
	"weekspend/internal/log"
	"weekspend/internal/present"
	"weekspend/internal/services"
	"weekspend/internal/weekly"
)

var testNow = time.Date(2024, 1, 17, 14, 0, 0, 0, time.UTC)

type failingLister struct{}

func (failingLister) ListExpenses(context.Context, time.Time, time.Time) ([]core.Expense, error) {
	return nil, errors.New("sheet unavailable")
}

func sampleStore() *memory.Store {
	return memory.New(
		core.Expense{ID: "cur", Date: "2024-01-15", Amount: core.Money{Cents: 12000}, Category: core.Category{ID: "food", Name: "Food"}, Comment: "Dinner"},
		core.Expense{ID: "prev", Date: "2024-01-09", Amount: core.Money{Cents: 10000}, Category: core.Category{ID: "food", Name: "Food"}},
	)
}

func newTestServer(t *testing.T, lister ledger.ExpenseLister, writer ledger.ExpenseWriter, opts Options) *Server {
	t.Helper()
	agg := weekly.NewAggregator(
		weekly.WithClock(func() time.Time { return testNow }),
		weekly.WithLocation(time.UTC),
	)
	reports := services.NewReportService(lister, agg, cache.NewLRUCache[[]core.Expense](4, time.Minute), nil)
	expenses := services.NewExpenseService(writer, nil)
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Output: io.Discard, Component: log.ComponentHTTP})
	}
	srv := NewServer(":0", reports, expenses, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func serve(srv *Server, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	store := sampleStore()
	srv := newTestServer(t, store, store, Options{})

	rr := serve(srv, http.MethodGet, "/", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Weekly spending", "Food", "20.0%", `class="change up"`, "15/01/2024 - 21/01/2024"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers not set")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request id not set")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := serve(srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	if rr := serve(srv, http.MethodGet, "/missing", "", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d, want 404", rr.Code)
	}
	if rr := serve(srv, http.MethodGet, "/static/style.css", "", ""); rr.Code != http.StatusOK {
		t.Errorf("static status=%d", rr.Code)
	}
}

func TestReadyReportsLedgerFailure(t *testing.T) {
	store := sampleStore()
	srv := newTestServer(t, store, store, Options{
		Ready: func(context.Context) error { return errors.New("db locked") },
	})

	rr := serve(srv, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "db locked") {
		t.Errorf("readyz body = %s", rr.Body.String())
	}
}

func TestWeeklyPartial(t *testing.T) {
	t.Run("no expenses", func(t *testing.T) {
		store := memory.New()
		srv := newTestServer(t, store, store, Options{})
		rr := serve(srv, http.MethodGet, "/ui/weekly", "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		body := rr.Body.String()
		if !strings.Contains(body, "No expenses recorded for the current week") {
			t.Errorf("missing fallback message: %s", body)
		}
		if strings.Contains(body, `class="chart"`) {
			t.Error("chart rendered without data")
		}
		if !strings.Contains(body, "N/A") {
			t.Error("expected N/A change")
		}
	})

	t.Run("load failure renders placeholder", func(t *testing.T) {
		srv := newTestServer(t, failingLister{}, memory.New(), Options{})
		rr := serve(srv, http.MethodGet, "/ui/weekly", "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Could not load expenses") {
			t.Errorf("body = %s", rr.Body.String())
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		store := sampleStore()
		srv := newTestServer(t, store, store, Options{})
		rr := serve(srv, http.MethodPost, "/ui/weekly", "", "")
		if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "GET" {
			t.Errorf("status=%d allow=%q", rr.Code, rr.Header().Get("Allow"))
		}
	})
}

func TestToggleCategory(t *testing.T) {
	store := sampleStore()
	srv := newTestServer(t, store, store, Options{})
	const form = "application/x-www-form-urlencoded"

	rr := serve(srv, http.MethodPost, "/ui/weekly/toggle", "category=Food", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"category:toggled"`) || !strings.Contains(trigger, `"expanded":true`) {
		t.Errorf("HX-Trigger = %s", trigger)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<table class="transactions">`) || !strings.Contains(body, "Dinner") {
		t.Errorf("expanded body missing transactions: %s", body)
	}
	if !strings.Contains(body, `name="expanded" value="Food"`) {
		t.Error("expansion state not carried in the partial")
	}

	form2 := url.Values{"category": {"Food"}, "expanded": {"Food", "Travel"}}.Encode()
	rr = serve(srv, http.MethodPost, "/ui/weekly/toggle", form2, form)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), `<table class="transactions">`) {
		t.Error("category still expanded after second toggle")
	}
	if !strings.Contains(rr.Body.String(), `name="expanded" value="Travel"`) {
		t.Error("unrelated expansion state lost")
	}

	if rr := serve(srv, http.MethodPost, "/ui/weekly/toggle", "", form); rr.Code != http.StatusBadRequest {
		t.Errorf("missing category status=%d, want 400", rr.Code)
	}
	if rr := serve(srv, http.MethodGet, "/ui/weekly/toggle", "", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status=%d, want 405", rr.Code)
	}
}

func TestWeeklyJSON(t *testing.T) {
	store := sampleStore()
	srv := newTestServer(t, store, store, Options{})

	rr := serve(srv, http.MethodGet, "/api/weekly?expanded=Food", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var got present.Weekly
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CurrentTotal != 12000 || got.PreviousTotal != 10000 {
		t.Errorf("totals = %d / %d", got.CurrentTotal, got.PreviousTotal)
	}
	if got.Change != "+20.0%" || got.Direction != "up" {
		t.Errorf("change = %s %s", got.Change, got.Direction)
	}
	if len(got.Labels) != 7 || got.Labels[0] != "15 Jan" {
		t.Errorf("labels = %v", got.Labels)
	}
	if len(got.Categories) != 1 || !got.Categories[0].Expanded || got.Categories[0].Percentage != 100 {
		t.Errorf("categories = %+v", got.Categories)
	}
	if got.Days[0].Change != "" || got.Days[1].Change != "-100.0%" {
		t.Errorf("day changes = %q, %q", got.Days[0].Change, got.Days[1].Change)
	}
	if len(got.Expanded) != 1 || got.Expanded[0] != "Food" {
		t.Errorf("expanded = %v", got.Expanded)
	}

	srv = newTestServer(t, failingLister{}, memory.New(), Options{})
	if rr := serve(srv, http.MethodGet, "/api/weekly", "", ""); rr.Code != http.StatusInternalServerError {
		t.Errorf("failing ledger status=%d, want 500", rr.Code)
	}
}

func TestCreateExpense(t *testing.T) {
	store := sampleStore()
	srv := newTestServer(t, store, store, Options{})
	const js = "application/json"

	// Warm the report cache so the create has to invalidate it.
	if rr := serve(srv, http.MethodGet, "/api/weekly", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("warm status=%d", rr.Code)
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"amount":`, http.StatusBadRequest},
		{"invalid amount", `{"amount":"abc","category":"Food"}`, http.StatusUnprocessableEntity},
		{"missing category", `{"amount":"5"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"amount":"5","category":"Food","date":"yesterday"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(srv, http.MethodPost, "/api/expenses", tt.body, js)
			if rr.Code != tt.status {
				t.Errorf("status=%d, want %d (%s)", rr.Code, tt.status, rr.Body.String())
			}
		})
	}

	rr := serve(srv, http.MethodPost, "/api/expenses", `{"amount":"15.50","category":"Travel","date":"2024-01-16","comment":"Taxi"}`, js)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created createdExpense
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.AmountCents != 1550 || created.Amount != "15.50" {
		t.Errorf("created = %+v", created)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"expense:created"`) {
		t.Errorf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}

	rr = serve(srv, http.MethodGet, "/api/weekly", "", "")
	var got present.Weekly
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CurrentTotal != 13550 {
		t.Errorf("current total after create = %d, want 13550", got.CurrentTotal)
	}

	if rr := serve(srv, http.MethodGet, "/api/expenses", "", ""); rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "POST" {
		t.Errorf("GET status=%d allow=%q", rr.Code, rr.Header().Get("Allow"))
	}
}

func TestPostRateLimit(t *testing.T) {
	store := sampleStore()
	srv := newTestServer(t, store, store, Options{PostLimit: 2})

	for i := 0; i < 2; i++ {
		if rr := serve(srv, http.MethodPost, "/ui/weekly/toggle", "category=Food", "application/x-www-form-urlencoded"); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := serve(srv, http.MethodPost, "/ui/weekly/toggle", "category=Food", "application/x-www-form-urlencoded")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"warning"`) {
		t.Errorf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}
	// GETs are not limited.
	if rr := serve(srv, http.MethodGet, "/ui/weekly", "", ""); rr.Code != http.StatusOK {
		t.Errorf("GET status=%d", rr.Code)
	}
}

func TestCreateExpenseFormPost(t *testing.T) {
	store := sampleStore()
	srv := newTestServer(t, store, store, Options{})
	const form = "application/x-www-form-urlencoded"

	rr := serve(srv, http.MethodPost, "/api/expenses", "amount=.&category=Food", form)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422 (%s)", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want html for form posts", ct)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"show-notification"`) || !strings.Contains(rr.Header().Get("HX-Trigger"), `"error"`) {
		t.Errorf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}

	rr = serve(srv, http.MethodPost, "/api/expenses", "amount=4&category=Food&date=2024-01-16", form)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{`"expense:created"`, `"weekly:refresh"`, `"success"`} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %s: %s", want, trigger)
		}
	}
}

func TestWeeklyPartialCategoryHeader(t *testing.T) {
	store := memory.New(
		core.Expense{ID: "a", Date: "2024-01-15", Amount: core.Money{Cents: 600}, Category: core.Category{Name: "Food, drinks"}},
		core.Expense{ID: "b", Date: "2024-01-16", Amount: core.Money{Cents: 400}, Category: core.Category{Name: "Food, drinks"}, Comment: "Bar"},
	)
	srv := newTestServer(t, store, store, Options{})

	q := url.Values{"expanded": {"Food, drinks"}}.Encode()
	rr := serve(srv, http.MethodGet, "/ui/weekly?"+q, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"(2 transactions)", "(100.0%)", `<table class="transactions">`, `<td class="comment">-</td>`, `<td class="comment">Bar</td>`} {
		if !strings.Contains(body, want) {
			t.Errorf("partial missing %q:\n%s", want, body)
		}
	}
}
