package chart

import (
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"paisa/internal/view"
)

const (
	renderWidth  = 640
	renderHeight = 400
)

// named CSS colors used by the palette
var cssColors = map[string]string{
	"crimson":    "dc143c",
	"orangered":  "ff4500",
	"yellow":     "ffff00",
	"lightgreen": "90ee90",
	"skyblue":    "87ceeb",
	"hotpink":    "ff69b4",
	"chocolate":  "d2691e",
}

func toColor(c string) drawing.Color {
	c = strings.ToLower(strings.TrimSpace(c))
	if hex, ok := cssColors[c]; ok {
		c = hex
	}
	return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
}

func provider(f Format) gochart.RendererProvider {
	if f == FormatPNG {
		return gochart.PNG
	}
	return gochart.SVG
}

func titleStyle() gochart.Style {
	return gochart.Style{FontColor: toColor(TitleColor)}
}

// RenderBar draws the income/expenses bar chart with rupee ticks.
func RenderBar(w io.Writer, bar BarChart, format Format) error {
	if len(bar.Data) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, 0, len(bar.Data))
	var max float64
	for i, v := range bar.Data {
		color := toColor(bar.Colors[i%len(bar.Colors)])
		bars = append(bars, gochart.Value{
			Label: bar.Labels[i],
			Value: v,
			Style: gochart.Style{FillColor: color, StrokeColor: color},
		})
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		max = 1
	}

	c := gochart.BarChart{
		Title:      bar.Title,
		TitleStyle: titleStyle(),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:    renderWidth,
		Height:   renderHeight,
		BarWidth: 120,
		Bars:     bars,
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: max * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return view.FormatINRWhole(f)
				}
				return ""
			},
		},
	}
	if err := c.Render(provider(format), w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// RenderPie draws the expenses-by-category pie chart.
func RenderPie(w io.Writer, pie PieChart, format Format) error {
	if len(pie.Data) == 0 {
		return ErrNoData
	}
	values := make([]gochart.Value, 0, len(pie.Data))
	for i, v := range pie.Data {
		values = append(values, gochart.Value{
			Label: pie.Labels[i],
			Value: v,
			Style: gochart.Style{
				FillColor:   toColor(pie.Colors[i%len(pie.Colors)]),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			},
		})
	}

	c := gochart.PieChart{
		Title:      pie.Title,
		TitleStyle: titleStyle(),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:  renderHeight,
		Height: renderHeight,
		Values: values,
	}
	if err := c.Render(provider(format), w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}
