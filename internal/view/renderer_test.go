package view

import (
	"bytes"
	"strings"
	"testing"

	"paisa/internal/core"
	"paisa/web"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(web.TemplatesFS)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestRendererPage(t *testing.T) {
	r := newTestRenderer(t)
	state := core.State{Transactions: []core.Transaction{
		{ID: 7, Description: "<b>Salary</b>", Amount: core.Money{Cents: 500000}, Category: core.CategoryIncome},
	}}

	var buf bytes.Buffer
	if err := r.Page(&buf, NewPage(BuildDashboard(state, core.ThemeDark))); err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		`data-theme="dark"`,
		`id="transaction-form"`,
		`id="dashboard"`,
		"₹5,000.00",
		`hx-delete="/transactions/7"`,
		"&lt;b&gt;Salary&lt;/b&gt;",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "categories.svg") {
		t.Errorf("pie fallback must be omitted when there are no expenses")
	}
}

func TestRendererCategoryField(t *testing.T) {
	r := newTestRenderer(t)

	var hidden bytes.Buffer
	if err := r.CategoryField(&hidden, NewCategoryField("10", "")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(hidden.String(), "display: none") {
		t.Errorf("positive amount should hide the selector")
	}

	var shown bytes.Buffer
	if err := r.CategoryField(&shown, NewCategoryField("-10", "Health")); err != nil {
		t.Fatal(err)
	}
	out := shown.String()
	if strings.Contains(out, "display: none") {
		t.Errorf("negative amount should show the selector")
	}
	if !strings.Contains(out, `<option value="Health" selected>`) {
		t.Errorf("selected category not kept: %s", out)
	}
}

func TestRendererDashboardEmpty(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	if err := r.Dashboard(&buf, BuildDashboard(core.State{}, core.ThemeLight)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No transactions yet") {
		t.Errorf("empty list placeholder missing")
	}
}
