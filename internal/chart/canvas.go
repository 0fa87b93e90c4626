package chart

import (
	"errors"
	"sync"

	"txdash/internal/query"
	"txdash/internal/view"
)

// ErrCanvasInUse is returned by Draw while a previous drawing is still live.
var ErrCanvasInUse = errors.New("canvas already holds a live chart")

// Canvas is a single chart slot. At most one Drawing is live at a time; it
// must be destroyed before the next Draw.
type Canvas struct {
	mu        sync.Mutex
	opts      Options
	current   *Drawing
	drawn     int
	destroyed int
}

// Drawing is one rendered chart. An empty point set yields a Drawing with no
// SVG, so callers can still destroy it uniformly.
type Drawing struct {
	canvas *Canvas
	svg    []byte
	points int
	dead   bool
}

// NewCanvas creates a canvas rendering at opts.
func NewCanvas(opts Options) *Canvas {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}
	return &Canvas{opts: opts}
}

// Draw renders points and makes the result the canvas's live drawing.
func (c *Canvas) Draw(points []query.Point) (view.Chart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && !c.current.dead {
		return nil, ErrCanvasInUse
	}

	d := &Drawing{canvas: c, points: len(points)}
	if len(points) > 0 {
		svg, err := SVG(points, c.opts)
		if err != nil {
			return nil, err
		}
		d.svg = svg
	}
	c.current = d
	c.drawn++
	return d, nil
}

// Destroy clears the drawing from its canvas. Repeated calls are no-ops.
func (d *Drawing) Destroy() {
	c := d.canvas
	c.mu.Lock()
	defer c.mu.Unlock()

	if d.dead {
		return
	}
	d.dead = true
	d.svg = nil
	c.destroyed++
	if c.current == d {
		c.current = nil
	}
}

// SVG returns the live drawing's markup, or nil when the canvas is empty.
func (c *Canvas) SVG() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || len(c.current.svg) == 0 {
		return nil
	}
	return append([]byte(nil), c.current.svg...)
}

// Points reports how many points the live drawing plots.
func (c *Canvas) Points() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0
	}
	return c.current.points
}

// Live reports how many drawings are currently not destroyed.
func (c *Canvas) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawn - c.destroyed
}
