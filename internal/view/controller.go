// Package view implements the dashboard view controller: it owns the
// navigation state and the current chart, reacts to input events and
// redraws the table and chart through host-supplied surfaces.
package view

import (
	"errors"
	"fmt"
	"strings"

	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/query"
)

// Controller is not safe for concurrent use; hosts serialise events.
type Controller struct {
	dataset   *core.Dataset
	customers core.CustomerIndex
	surfaces  Surfaces
	logger    *log.Logger

	term  string
	mode  Mode
	chart Chart
	shown []core.Transaction
}

func NewController(ds *core.Dataset, surfaces Surfaces, logger *log.Logger) (*Controller, error) {
	if ds == nil {
		return nil, errors.New("nil dataset")
	}
	if surfaces.Table == nil || surfaces.Chart == nil || surfaces.Back == nil {
		return nil, errors.New("table, chart and back surfaces are required")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Controller{
		dataset:   ds,
		customers: ds.Index(),
		surfaces:  surfaces,
		logger:    logger.WithComponent(log.ComponentView),
		mode:      AllMode(),
	}, nil
}

// Init performs the first render of the full dataset.
func (c *Controller) Init() error {
	c.mode = AllMode()
	c.surfaces.Back.SetVisible(false)
	return c.Render(c.dataset.Transactions)
}

// OnFilterInput records term and, in AllTransactions mode, redraws the full
// transaction set filtered by it. While a customer is focused the term is
// only stored; the focused view ignores the search box.
func (c *Controller) OnFilterInput(term string) error {
	c.term = strings.TrimSpace(term)
	if c.mode.Focused() {
		c.logger.Debug("Filter input stored while customer focused",
			log.FieldOperation, log.OpFilter,
			log.FieldMode, c.mode.String(),
			log.FieldSearchTerm, c.term)
		return nil
	}
	matched, skipped := query.FilterBySearchTerm(c.dataset.Transactions, c.customers, c.term)
	for _, id := range skipped {
		c.logger.Warn("Transaction references unknown customer, skipped",
			log.FieldOperation, log.OpFilter,
			log.FieldErrorType, log.ErrorTypeIntegrity,
			log.FieldTransactionID, id)
	}
	return c.Render(matched)
}

// OnCustomerActivated focuses the view on one customer's transactions.
func (c *Controller) OnCustomerActivated(customerID int) error {
	if _, ok := c.customers.Lookup(customerID); !ok {
		c.logger.Warn("Activated customer is not in the dataset",
			log.FieldOperation, log.OpActivate,
			log.FieldCustomerID, customerID,
			log.FieldErrorType, log.ErrorTypeNotFound)
	}
	c.mode = FocusMode(customerID)
	if err := c.Render(query.FilterByCustomer(c.dataset.Transactions, customerID)); err != nil {
		return err
	}
	c.surfaces.Back.SetVisible(true)
	return nil
}

// OnBackActivated returns to the unfiltered AllTransactions view. The stored
// term is kept for the next filter input.
func (c *Controller) OnBackActivated() error {
	c.mode = AllMode()
	if err := c.Render(c.dataset.Transactions); err != nil {
		return err
	}
	c.surfaces.Back.SetVisible(false)
	return nil
}

// Render rebuilds the table and replaces the chart. Rows whose customer
// cannot be resolved are skipped and logged.
func (c *Controller) Render(txs []core.Transaction) error {
	c.surfaces.Table.Clear()
	shown := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		cust, ok := c.customers.Lookup(t.CustomerID)
		if !ok {
			c.logger.Warn("Row skipped, transaction references unknown customer",
				log.FieldOperation, log.OpRender,
				log.FieldErrorType, log.ErrorTypeIntegrity,
				log.FieldTransactionID, t.ID,
				log.FieldCustomerID, t.CustomerID)
			continue
		}
		c.surfaces.Table.AppendRow(Row{
			TransactionID: t.ID,
			CustomerID:    cust.ID,
			CustomerName:  cust.Name,
			Date:          t.Date,
			Amount:        t.AmountString(),
		})
		shown = append(shown, t)
	}
	c.shown = shown

	c.destroyChart()
	points := query.Aggregate(query.GroupByDate(shown))
	chart, err := c.surfaces.Chart.Draw(points)
	if err != nil {
		return fmt.Errorf("draw chart: %w", err)
	}
	c.chart = chart

	c.logger.Debug("View rendered",
		log.FieldOperation, log.OpRender,
		log.FieldMode, c.mode.String(),
		log.FieldRows, len(shown),
		log.FieldPoints, len(points))
	return nil
}

// Close releases the current chart.
func (c *Controller) Close() {
	c.destroyChart()
}

func (c *Controller) destroyChart() {
	if c.chart != nil {
		c.chart.Destroy()
		c.chart = nil
	}
}

// Mode reports the navigation state.
func (c *Controller) Mode() Mode { return c.mode }

// Term reports the stored free-text filter.
func (c *Controller) Term() string { return c.term }

// Visible returns the transactions currently shown.
func (c *Controller) Visible() []core.Transaction {
	return append([]core.Transaction(nil), c.shown...)
}

// Dataset returns the dataset the controller renders.
func (c *Controller) Dataset() *core.Dataset { return c.dataset }
