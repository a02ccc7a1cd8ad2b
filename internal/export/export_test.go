package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"paisa/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: 1_700_000_000_000, Description: "Salary", Amount: core.Money{Cents: 500000}, Category: core.CategoryIncome},
		{ID: 1_700_000_000_001, Description: "Groceries, weekly", Amount: core.Money{Cents: -20050}, Category: "Food"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), utf8BOM) {
		t.Fatalf("missing BOM")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0][0] != "ID" || records[0][5] != "Amount (INR)" {
		t.Errorf("unexpected header: %v", records[0])
	}
	want := []string{"1700000000001", "2023-11-14 22:13:20", "Groceries, weekly", "Food", "Expense", "-200.5"}
	for i, v := range want {
		if records[2][i] != v {
			t.Errorf("column %d = %q, want %q", i, records[2][i], v)
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sample()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if rows[0][2] != "Description" || rows[1][2] != "Salary" || rows[2][3] != "Food" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	label, _ := f.GetCellValue(sheetName, "E7")
	if label != "Balance" {
		t.Fatalf("totals label = %q", label)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Fatalf("xlsx: %v %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatal("pdf should be rejected")
	}
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := FormatCSV.Filename(day); got != "transactions_20240309.csv" {
		t.Fatalf("filename = %q", got)
	}
}
