package benchmark

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	barColor       = drawing.ColorFromHex("94a3b8")
	highlightColor = drawing.ColorFromHex("2563eb")
)

// RenderBarChart writes a PNG bar chart of the 10-year averages. The bar of
// the highlighted class, if any, is drawn in the accent colour.
func RenderBarChart(w io.Writer, highlight string) error {
	tenYear := TenYear()

	bars := make([]chart.Value, 0, len(tenYear))
	for _, class := range Classes() {
		col := barColor
		if highlight != "" && Classify(highlight) == class {
			col = highlightColor
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", class, tenYear[class]),
			Value: tenYear[class],
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	graph := chart.BarChart{
		Title:      "ISC medio a 10 anni",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 8}},
		Width:      480,
		Height:     320,
		BarWidth:   80,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 3},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render benchmark chart: %w", err)
	}
	return nil
}
