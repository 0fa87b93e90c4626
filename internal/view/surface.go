package view

import "txdash/internal/query"

// Row is one rendered table row. CustomerID is the target of the
// customer-name link.
type Row struct {
	TransactionID int
	CustomerID    int
	CustomerName  string
	Date          string
	Amount        string
}

// Table is the table-rendering target supplied by the host.
type Table interface {
	Clear()
	AppendRow(Row)
}

// Chart is a drawn chart instance owned by the controller.
type Chart interface {
	Destroy()
}

// ChartSurface draws a new chart from aggregate points.
type ChartSurface interface {
	Draw(points []query.Point) (Chart, error)
}

// BackControl is the back-navigation affordance.
type BackControl interface {
	SetVisible(visible bool)
}

// Surfaces groups the rendering targets a controller draws into.
type Surfaces struct {
	Table Table
	Chart ChartSurface
	Back  BackControl
}
