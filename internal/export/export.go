// Package export writes the transaction list as CSV or Excel workbooks.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"paisa/internal/core"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	sheetName  = "Transactions"
	timeLayout = "2006-01-02 15:04:05"
	utf8BOM    = "\xEF\xBB\xBF"
)

var headers = []string{"ID", "Recorded At (UTC)", "Description", "Category", "Type", "Amount (INR)"}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name for an export taken at now.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("transactions_%s.%s", now.Format("20060102"), f)
}

// Write dispatches on format.
func Write(w io.Writer, f Format, txs []core.Transaction) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, txs)
	case FormatXLSX:
		return WriteXLSX(w, txs)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func kind(t core.Transaction) string {
	if t.IsExpense() {
		return "Expense"
	}
	return "Income"
}

func recordedAt(t core.Transaction) string {
	return time.UnixMilli(t.ID).UTC().Format(timeLayout)
}

// WriteCSV writes a header row and one row per transaction in entry order.
// A BOM is prepended so spreadsheet applications detect UTF-8 (₹, non-Latin
// descriptions).
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			recordedAt(t),
			t.Description,
			t.Category,
			kind(t),
			t.Amount.Decimal(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a styled workbook with a totals row under the data.
func WriteXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	dataStyle, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return fmt.Errorf("data style: %w", err)
	}
	amountFormat := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{Border: border, CustomNumFmt: &amountFormat})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border:       border,
		CustomNumFmt: &amountFormat,
	})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}

	widths := []float64{16, 20, 32, 16, 10, 16}
	for i, width := range widths {
		col := string(rune('A' + i))
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, t := range txs {
		row := i + 2
		values := []any{t.ID, recordedAt(t), t.Description, t.Category, kind(t), t.Amount.Rupees()}
		for col, v := range values {
			if err := f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), v); err != nil {
				return fmt.Errorf("write row %d: %w", t.ID, err)
			}
		}
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), dataStyle); err != nil {
			return fmt.Errorf("style row: %w", err)
		}
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), amountStyle); err != nil {
			return fmt.Errorf("style amount: %w", err)
		}
	}

	sum := core.Summarize(txs)
	totals := []struct {
		label string
		value core.Money
	}{
		{"Income", sum.Income},
		{"Expenses", sum.Expenses},
		{"Balance", sum.Balance},
	}
	start := len(txs) + 3
	for i, tot := range totals {
		row := start + i
		if err := f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), tot.label); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), tot.value.Rupees()); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), totalStyle); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
