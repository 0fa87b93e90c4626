// Package query holds the pure filtering and aggregation functions used by
// the view layer. None of them mutate their inputs.
package query

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"txdash/internal/core"
)

// DateGroup is the set of transactions that share a date.
type DateGroup struct {
	Date         string
	Transactions []core.Transaction
}

// Point is one aggregate chart point: the summed amount for a date.
type Point struct {
	Date   string
	Amount decimal.Decimal
}

// FilterByCustomer returns the transactions of customerID in their original order.
func FilterByCustomer(txs []core.Transaction, customerID int) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out
}

// FilterBySearchTerm keeps the transactions whose customer name or amount
// contains term, ignoring case. An empty term keeps everything.
// Transactions whose customer cannot be resolved are left out of matched
// and their ids returned as skipped.
func FilterBySearchTerm(txs []core.Transaction, customers core.CustomerIndex, term string) (matched []core.Transaction, skipped []int) {
	folder := cases.Fold()
	needle := folder.String(term)

	matched = make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		c, ok := customers.Lookup(t.CustomerID)
		if !ok {
			skipped = append(skipped, t.ID)
			continue
		}
		if needle == "" ||
			strings.Contains(folder.String(c.Name), needle) ||
			strings.Contains(t.AmountString(), needle) {
			matched = append(matched, t)
		}
	}
	return matched, skipped
}

// GroupByDate groups transactions by date. Groups appear in first-seen
// date order and keep encounter order within each group; dates are not sorted.
func GroupByDate(txs []core.Transaction) []DateGroup {
	var groups []DateGroup
	pos := make(map[string]int)
	for _, t := range txs {
		i, ok := pos[t.Date]
		if !ok {
			i = len(groups)
			pos[t.Date] = i
			groups = append(groups, DateGroup{Date: t.Date})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

// Aggregate sums each group into a single point, keeping group order.
func Aggregate(groups []DateGroup) []Point {
	points := make([]Point, 0, len(groups))
	for _, g := range groups {
		sum := decimal.Zero
		for _, t := range g.Transactions {
			sum = sum.Add(t.Amount)
		}
		points = append(points, Point{Date: g.Date, Amount: sum})
	}
	return points
}
