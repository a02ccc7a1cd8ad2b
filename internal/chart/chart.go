// Package chart turns summaries into chart data for the browser and into
// server-side SVG/PNG renderings. Nothing is cached: every call builds a
// fresh chart from the summary it is given.
package chart

import (
	"errors"
	"fmt"
	"strings"

	"paisa/internal/core"
)

const (
	BarTitle = "Income vs Expenses"
	PieTitle = "Expenses by Category"

	TitleColor     = "#64748b"
	IncomeColor    = "#10b981"
	ExpenseColor   = "#ef4444"
	LegendPosition = "right"
)

// Palette is cycled over the pie slices in category order.
var Palette = []string{
	"crimson",
	"orangered",
	"yellow",
	"lightgreen",
	"skyblue",
	"hotpink",
	"chocolate",
}

var ErrNoData = errors.New("no chart data")

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

type BarChart struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors"`
}

type PieChart struct {
	Title          string    `json:"title"`
	Labels         []string  `json:"labels"`
	Data           []float64 `json:"data"`
	Colors         []string  `json:"colors"`
	LegendPosition string    `json:"legendPosition"`
}

// Charts is the bundle served to the Chart.js front end. Pie is nil when
// there are no expenses.
type Charts struct {
	Bar        BarChart  `json:"bar"`
	Pie        *PieChart `json:"pie"`
	TitleColor string    `json:"titleColor"`
}

// BuildBar compares total income with the magnitude of total expenses.
func BuildBar(sum core.Summary) BarChart {
	return BarChart{
		Title:  BarTitle,
		Labels: []string{"Income", "Expenses"},
		Data:   []float64{sum.Income.Rupees(), sum.Expenses.Abs().Rupees()},
		Colors: []string{IncomeColor, ExpenseColor},
	}
}

// BuildPie returns one slice per expense category, in first-seen order.
// The second result is false when there is nothing to draw.
func BuildPie(sum core.Summary) (PieChart, bool) {
	if len(sum.ByCategory) == 0 {
		return PieChart{}, false
	}
	pie := PieChart{
		Title:          PieTitle,
		Labels:         make([]string, 0, len(sum.ByCategory)),
		Data:           make([]float64, 0, len(sum.ByCategory)),
		Colors:         make([]string, 0, len(sum.ByCategory)),
		LegendPosition: LegendPosition,
	}
	for i, c := range sum.ByCategory {
		pie.Labels = append(pie.Labels, c.Name)
		pie.Data = append(pie.Data, c.Amount.Rupees())
		pie.Colors = append(pie.Colors, Palette[i%len(Palette)])
	}
	return pie, true
}

func Build(sum core.Summary) Charts {
	charts := Charts{Bar: BuildBar(sum), TitleColor: TitleColor}
	if pie, ok := BuildPie(sum); ok {
		charts.Pie = &pie
	}
	return charts
}
