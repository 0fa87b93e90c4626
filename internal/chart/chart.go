// Package chart draws the totals-per-date line chart with go-chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"txdash/internal/query"
)

// SeriesName labels the single plotted series.
const SeriesName = "Total Transaction Amount"

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("no points to draw")

var seriesColor = drawing.Color{R: 75, G: 192, B: 192, A: 255}

// Options controls the rendered size.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions matches the dashboard canvas.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 320}
}

// Build converts aggregate points into a go-chart line chart. The x axis is
// categorical: one tick per date in the order given. The y axis starts at zero.
func Build(points []query.Point, opts Options) (gochart.Chart, error) {
	if len(points) == 0 {
		return gochart.Chart{}, ErrNoPoints
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]gochart.Tick, len(points))
	maxY := 0.0
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Amount.InexactFloat64()
		ticks[i] = gochart.Tick{Value: float64(i), Label: p.Date}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	if maxY <= 0 {
		maxY = 1
	}

	series := gochart.ContinuousSeries{
		Name:    SeriesName,
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: seriesColor,
			StrokeWidth: 2,
			FillColor:   seriesColor.WithAlpha(50),
			DotColor:    seriesColor,
			DotWidth:    3,
		},
	}

	c := gochart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 30, Left: 16, Right: 24, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(points)) - 0.5},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []gochart.Series{series},
	}
	c.Elements = []gochart.Renderable{gochart.LegendLeft(&c)}
	return c, nil
}

// RenderSVG writes the chart for points to w as SVG.
func RenderSVG(w io.Writer, points []query.Point, opts Options) error {
	c, err := Build(points, opts)
	if err != nil {
		return err
	}
	if err := c.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// SVG renders points into a byte slice.
func SVG(points []query.Point, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderSVG(&buf, points, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
