// Package export writes epidemic runs to files: the population line graph,
// an animation of the grid and the raw time series.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"epi-ca/internal/sims/epidemic"
)

// ErrNotEnoughData reports a series too short to draw a line.
var ErrNotEnoughData = errors.New("export: need at least two turns to plot")

// PlotOptions controls the line graph layout.
type PlotOptions struct {
	Title       string
	Width       int
	Height      int
	StrokeWidth float64
}

// DefaultPlotOptions matches the 10x7 inch figure of the desktop viewer.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Title:       "Cell number against time",
		Width:       1000,
		Height:      700,
		StrokeWidth: 3,
	}
}

// RenderPlot draws one line per state against the turn number as a PNG.
func RenderPlot(w io.Writer, s epidemic.Series, opts PlotOptions) error {
	n := s.Len()
	if n < 2 {
		return ErrNotEnoughData
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	maxY := 0.0
	series := make([]chart.Series, 0, epidemic.NumStates)
	for _, st := range epidemic.States {
		ys := append([]float64(nil), s.Values(st)...)
		for _, v := range ys {
			if v > maxY {
				maxY = v
			}
		}
		c := st.Color()
		series = append(series, chart.ContinuousSeries{
			Name:    st.String(),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A},
				StrokeWidth: opts.StrokeWidth,
			},
		})
	}
	if maxY <= 0 {
		maxY = 1
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Time",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(n - 1)},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "N",
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.05},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}
	return graph.Render(chart.PNG, w)
}

// WritePlot renders the line graph into a PNG file at path.
func WritePlot(path string, s epidemic.Series, opts PlotOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderPlot(f, s, opts); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
