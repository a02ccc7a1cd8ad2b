package view

import (
	"paisa/internal/core"
)

const (
	BalancePositive = "positive"
	BalanceNegative = "negative"

	KindIncome  = "income"
	KindExpense = "expense"
)

// Row is one entry of the transaction list.
type Row struct {
	ID            int64
	Description   string
	CategoryLabel string
	Kind          string
	Amount        string
}

// CategoryRow is one expense category with its share of the largest one,
// used for the no-script bar list next to the pie chart.
type CategoryRow struct {
	Name   string
	Amount string
	Width  int
}

type Dashboard struct {
	Theme            string
	Balance          string
	Income           string
	Expenses         string
	BalanceState     string
	Rows             []Row
	Categories       []CategoryRow
	HasCategoryChart bool
	Count            int
	// Version changes whenever the list does, so chart images are refetched.
	Version int64
}

// Page is the full index page: the dashboard plus the entry form.
type Page struct {
	Dashboard
	CategoryField CategoryField
}

// CategoryField drives the expense category selector.
type CategoryField struct {
	Visible  bool
	Options  []string
	Selected string
}

// BuildDashboard derives everything the dashboard shows from state. It is
// recomputed in full on every render.
func BuildDashboard(state core.State, theme core.Theme) Dashboard {
	sum := state.Summary()

	d := Dashboard{
		Theme:            theme.String(),
		Balance:          FormatINR(sum.Balance),
		Income:           FormatINR(sum.Income),
		Expenses:         FormatINR(sum.Expenses),
		BalanceState:     BalancePositive,
		HasCategoryChart: len(sum.ByCategory) > 0,
		Count:            sum.Count,
		Version:          state.MaxID() + int64(sum.Count),
	}
	if sum.Balance.IsNegative() {
		d.BalanceState = BalanceNegative
	}

	for _, t := range state.Newest() {
		d.Rows = append(d.Rows, newRow(t))
	}

	var maxCents int64
	for _, c := range sum.ByCategory {
		if c.Amount.Cents > maxCents {
			maxCents = c.Amount.Cents
		}
	}
	for _, c := range sum.ByCategory {
		d.Categories = append(d.Categories, CategoryRow{
			Name:   c.Name,
			Amount: FormatINR(c.Amount),
			Width:  barWidth(c.Amount.Cents, maxCents),
		})
	}
	return d
}

func newRow(t core.Transaction) Row {
	r := Row{
		ID:            t.ID,
		Description:   t.Description,
		CategoryLabel: t.Category,
		Kind:          KindIncome,
		Amount:        FormatINR(t.Amount),
	}
	if t.IsExpense() {
		category := t.Category
		if category == "" {
			category = core.CategoryOther
		}
		r.CategoryLabel = category + " (Expense)"
		r.Kind = KindExpense
	}
	return r
}

// barWidth returns cents as a rounded percentage of maxCents, at least 2
// for any non-zero value.
func barWidth(cents, maxCents int64) int {
	if maxCents <= 0 || cents <= 0 {
		return 0
	}
	width := int((cents*100 + maxCents/2) / maxCents)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

// CategoryFieldVisible reports whether the category selector should be
// shown for the amount typed so far: only for a number below zero.
func CategoryFieldVisible(amountInput string) bool {
	m, err := core.ParseAmount(amountInput)
	return err == nil && m.IsNegative()
}

// NewCategoryField builds the selector state for a live amount input.
func NewCategoryField(amountInput, selected string) CategoryField {
	return CategoryField{
		Visible:  CategoryFieldVisible(amountInput),
		Options:  core.ExpenseCategories,
		Selected: selected,
	}
}

func NewPage(d Dashboard) Page {
	return Page{Dashboard: d, CategoryField: NewCategoryField("", "")}
}
