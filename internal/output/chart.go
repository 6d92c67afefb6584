package output

import (
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/marcus/fastly-stats/internal/document"
)

const (
	minChartWidth  = 20
	minChartHeight = 3
)

// Chart plots the requests series of a stats response as an ASCII line chart.
func (r *Renderer) Chart(v document.Value, width, height int) error {
	points := StatsPoints(v)
	if len(points) == 0 {
		_, err := fmt.Fprintln(r.Out, "No data available")
		return err
	}

	if width < minChartWidth {
		width = minChartWidth
	}
	if height < minChartHeight {
		height = minChartHeight
	}

	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = float64(p.Requests)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(chartCaption(points)),
	)
	_, err := fmt.Fprintln(r.Out, graph)
	return err
}

func chartCaption(points []Point) string {
	first := time.Unix(points[0].StartTime, 0).UTC().Format(time.RFC3339)
	last := time.Unix(points[len(points)-1].StartTime, 0).UTC().Format(time.RFC3339)
	return fmt.Sprintf("requests %s .. %s", first, last)
}
