package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"paisa/internal/core"
	"paisa/internal/kv/memory"
	"paisa/internal/log"
	"paisa/internal/services"
	"paisa/internal/view"
	"paisa/web"
)

type testEnv struct {
	server *Server
	svc    *services.TransactionService
	kv     *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	clock := time.UnixMilli(1700000000000)
	svc := services.NewTransactionService(store,
		services.WithLogger(log.Discard()),
		services.WithClock(func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		}))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	renderer, err := view.NewRenderer(web.TemplatesFS)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	srv := NewServer(":0", svc, renderer, WithLogger(log.Discard()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{server: srv, svc: svc, kv: store}
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(method, target, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func txForm(desc, amount, category string) url.Values {
	return url.Values{"description": {desc}, "amount": {amount}, "category": {category}}
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `id="dashboard"`) {
		t.Fatal("index should embed the dashboard")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestUnknownPathIs404(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(http.MethodGet, "/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/transactions", txForm("Salary", "5000", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	trigger := rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, EventTransactionCreated) || !strings.Contains(trigger, EventFormReset) {
		t.Fatalf("HX-Trigger = %q", trigger)
	}
	if !strings.Contains(rec.Body.String(), "Salary") {
		t.Fatal("dashboard should list the new transaction")
	}

	txs := env.svc.Transactions()
	if len(txs) != 1 || txs[0].Category != core.CategoryIncome || txs[0].Amount.Cents != 500000 {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
	if env.kv.Writes() != 1 {
		t.Fatalf("writes = %d, want 1", env.kv.Writes())
	}
}

func TestCreateTransactionRejectsInvalidInputSilently(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"empty description", txForm("   ", "100", "")},
		{"malformed decimal", txForm("Coffee", "1.2.3", "")},
		{"non numeric amount", txForm("Coffee", "abc", "")},
		{"empty amount", txForm("Coffee", "", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodPost, "/transactions", tt.form)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("status = %d", rec.Code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Fatal("rejection must not swap the page")
			}
			if rec.Body.Len() != 0 {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
			if env.kv.Writes() != 0 || len(env.svc.Transactions()) != 0 {
				t.Fatal("rejected input must not change state")
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tx, err := env.svc.Add(ctx, "Groceries", "-1500", "Food")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	rec := env.do(http.MethodDelete, "/transactions/"+itoa(tx.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), EventTransactionDeleted) {
		t.Fatal("missing delete trigger")
	}
	if len(env.svc.Transactions()) != 0 {
		t.Fatal("transaction not removed")
	}
}

func TestDeleteUnknownTransactionRendersUnchanged(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Add(context.Background(), "Rent", "-20000", "Housing"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	writes := env.kv.Writes()

	rec := env.do(http.MethodPost, "/transactions/42", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("HX-Trigger") != "" {
		t.Fatal("no trigger expected for a no-op delete")
	}
	if len(env.svc.Transactions()) != 1 || env.kv.Writes() != writes {
		t.Fatal("no-op delete must not change state")
	}
}

func TestDeleteBadID(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(http.MethodDelete, "/transactions/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAPITransactions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/transactions", `{"description":"Salary","amount":"5000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = env.doJSON(http.MethodPost, "/api/transactions", `{"description":"Groceries","amount":"-1500","category":"Food"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var got struct {
		Transactions []core.Transaction `json:"transactions"`
		Summary      struct {
			Balance  float64 `json:"balance"`
			Income   float64 `json:"income"`
			Expenses float64 `json:"expenses"`
			Count    int     `json:"count"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Transactions) != 2 || got.Transactions[0].Description != "Groceries" {
		t.Fatalf("want newest first, got %+v", got.Transactions)
	}
	if got.Summary.Balance != 3500 || got.Summary.Income != 5000 || got.Summary.Expenses != -1500 || got.Summary.Count != 2 {
		t.Fatalf("unexpected summary %+v", got.Summary)
	}
}

func TestAPICreateValidation(t *testing.T) {
	env := newTestEnv(t)
	rec := env.doJSON(http.MethodPost, "/api/transactions", `{"description":"","amount":"10"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = env.doJSON(http.MethodPost, "/api/transactions", `{"description":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed status = %d", rec.Code)
	}
}

func TestAPICreateRejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t)
	payload := `{"description":"` + strings.Repeat("a", maxBodyBytes) + `","amount":"10"}`
	rec := env.doJSON(http.MethodPost, "/api/transactions", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if n := len(env.svc.Transactions()); n != 0 {
		t.Fatalf("%d transactions stored from an oversized body", n)
	}
}

func TestAPIDelete(t *testing.T) {
	env := newTestEnv(t)
	tx, err := env.svc.Add(context.Background(), "Tea", "-20", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec := env.do(http.MethodDelete, "/api/transactions/"+itoa(tx.ID), nil); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := env.do(http.MethodDelete, "/api/transactions/"+itoa(tx.ID), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestCharts(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Add(context.Background(), "Salary", "5000", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}

	rec := env.do(http.MethodGet, "/api/charts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(data["pie"]) != "null" {
		t.Fatalf("pie should be null without expenses, got %s", data["pie"])
	}

	if rec := env.do(http.MethodGet, "/charts/categories.svg", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("pie without expenses status = %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/charts/balance.svg", nil); rec.Code != http.StatusOK {
		t.Fatalf("bar status = %d", rec.Code)
	} else if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Fatalf("content type = %q", ct)
	}
	if rec := env.do(http.MethodGet, "/charts/other.svg", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chart status = %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/charts/balance.gif", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown format status = %d", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Add(context.Background(), "Salary", "5000", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}

	rec := env.do(http.MethodGet, "/export/transactions.csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Salary") {
		t.Fatal("export should contain the transaction")
	}
	if rec := env.do(http.MethodGet, "/export/transactions.pdf", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown format status = %d", rec.Code)
	}
}

func TestThemeToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.do(http.MethodPost, "/theme/toggle", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), EventThemeChanged) {
		t.Fatal("missing theme trigger")
	}
	if theme, _ := env.svc.Theme(ctx); theme != core.ThemeDark {
		t.Fatalf("theme = %q, want dark", theme)
	}

	env.do(http.MethodPost, "/theme/toggle", url.Values{"theme": {"light"}})
	if theme, _ := env.svc.Theme(ctx); theme != core.ThemeLight {
		t.Fatalf("theme = %q, want light", theme)
	}

	if rec := env.do(http.MethodPost, "/theme/toggle", url.Values{"theme": {"sepia"}}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid theme status = %d", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/transactions", txForm("Salary", "5000", ""))
	env.do(http.MethodPost, "/transactions", txForm("", "5000", ""))

	rec := env.do(http.MethodGet, "/metrics", nil)
	body := rec.Body.String()
	for _, want := range []string{
		"transactions_created_total 1",
		"transactions_rejected_total 1",
		"transactions 1",
	} {
		if !strings.Contains(body, want+"\n") {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestTraceBlocksTraceMethod(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(http.MethodTrace, "/", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
