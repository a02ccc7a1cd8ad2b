package google

import (
	"context"
	"strings"
	"testing"

	gsheet "google.golang.org/api/sheets/v4"

	"paisa/internal/core"
	"paisa/internal/log"
)

func TestNewMissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewMissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNewUnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:   "sheet",
		CredentialsFile: t.TempDir() + "/missing.json",
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"1700000000000"},
		{},
		{float64(1700000000005)},
		{" 1700000000009 "},
	}

	tests := []struct {
		id   int64
		want int
	}{
		{1700000000000, 1},
		{1700000000005, 3},
		{1700000000009, 4},
		{42, -1},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}

	if got := findRow(nil, 1); got != -1 {
		t.Errorf("findRow on empty sheet = %d, want -1", got)
	}
}

func TestRowValues(t *testing.T) {
	tx := core.Transaction{ID: 1700000000000, Description: "Groceries", Amount: core.Money{Cents: -150050}, Category: "Food"}

	row := rowValues(tx)
	if len(row) != len(Header) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(Header))
	}
	if row[0] != "1700000000000" {
		t.Errorf("id cell = %v", row[0])
	}
	if row[1] != "2023-11-14T22:13:20Z" {
		t.Errorf("recorded at = %v", row[1])
	}
	if row[4] != "Expense" {
		t.Errorf("type = %v", row[4])
	}
	if row[5] != -1500.5 {
		t.Errorf("amount = %v", row[5])
	}

	income := rowValues(core.Transaction{ID: 1, Description: "Salary", Amount: core.Money{Cents: 100}, Category: core.CategoryIncome})
	if income[4] != "Income" {
		t.Errorf("type = %v, want Income", income[4])
	}
}

func TestSheetIDByTitle(t *testing.T) {
	list := []*gsheet.Sheet{
		{Properties: &gsheet.SheetProperties{Title: "Summary", SheetId: 0}},
		{Properties: &gsheet.SheetProperties{Title: "Transactions", SheetId: 981}},
		nil,
	}
	if id, ok := sheetIDByTitle(list, "Transactions"); !ok || id != 981 {
		t.Errorf("got %d %v, want 981 true", id, ok)
	}
	if _, ok := sheetIDByTitle(list, "Missing"); ok {
		t.Error("expected missing sheet")
	}
}

func TestAppendRequiresService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}
	err := c.AppendTransaction(context.Background(), core.Transaction{ID: 1, Description: "x", Amount: core.Money{Cents: 1}, Category: core.CategoryIncome})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}

	err = c.AppendTransaction(context.Background(), core.Transaction{})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRowIDsSkipsHeaderAndBlanks(t *testing.T) {
	values := [][]any{
		{"ID", "Recorded At (UTC)"},
		{"1700000000000"},
		{},
		{float64(1700000000001)},
		{"not an id"},
	}
	got := rowIDs(values)
	if len(got) != 2 || got[0] != 1700000000000 || got[1] != 1700000000001 {
		t.Fatalf("rowIDs = %v", got)
	}
}

func TestTransactionIDsRequiresService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}
	if _, err := c.TransactionIDs(context.Background()); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

func TestClientLoggerDefaultsToDiscard(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}
	if c.log() == nil {
		t.Fatal("client without a logger must still log somewhere")
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet", CredentialsFile: t.TempDir() + "/missing.json", Logger: log.Discard()})
	if err == nil {
		t.Fatal("expected credentials error")
	}
}
