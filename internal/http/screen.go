package http

import (
	"txdash/internal/chart"
	"txdash/internal/core"
	"txdash/internal/query"
	"txdash/internal/view"
)

// screen is a session's page state. The controller draws into it through
// the view surfaces and handlers render templates from what it holds.
type screen struct {
	rows    []view.Row
	back    bool
	canvas  *chart.Canvas
	version int
}

func newScreen(opts chart.Options) *screen {
	return &screen{canvas: chart.NewCanvas(opts)}
}

func (s *screen) surfaces() view.Surfaces {
	return view.Surfaces{Table: s, Chart: s, Back: s}
}

func (s *screen) Clear() { s.rows = s.rows[:0] }

func (s *screen) AppendRow(r view.Row) { s.rows = append(s.rows, r) }

func (s *screen) SetVisible(visible bool) { s.back = visible }

// Draw bumps the chart version so the page requests the new SVG.
func (s *screen) Draw(points []query.Point) (view.Chart, error) {
	c, err := s.canvas.Draw(points)
	if err != nil {
		return nil, err
	}
	s.version++
	return c, nil
}

// dashboardView is the data handed to the dashboard templates.
type dashboardView struct {
	Mode         string
	Focused      bool
	CustomerName string
	Term         string
	Rows         []view.Row
	BackVisible  bool
	HasChart     bool
	ChartVersion int
	Origin       core.Origin
}

func (s *screen) snapshot(ctrl *view.Controller) dashboardView {
	mode := ctrl.Mode()
	v := dashboardView{
		Mode:         mode.Kind.String(),
		Focused:      mode.Focused(),
		Term:         ctrl.Term(),
		Rows:         append([]view.Row(nil), s.rows...),
		BackVisible:  s.back,
		HasChart:     s.canvas.SVG() != nil,
		ChartVersion: s.version,
		Origin:       ctrl.Dataset().Origin,
	}
	if mode.Focused() {
		if c, ok := ctrl.Dataset().Index().Lookup(mode.CustomerID); ok {
			v.CustomerName = c.Name
		}
	}
	return v
}
