package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"txdash/internal/core"
	"txdash/internal/source"
)

// parseCustomers converts a values matrix with header id,name.
func parseCustomers(values [][]interface{}) ([]core.Customer, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: customers range is empty", source.ErrInvalidShape)
	}
	out := make([]core.Customer, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		id, err := parseID(safeGet(row, 0))
		if err != nil {
			return nil, fmt.Errorf("customers row %d: %w", i+1, err)
		}
		out = append(out, core.Customer{ID: id, Name: strings.TrimSpace(safeGet(row, 1))})
	}
	return out, nil
}

// parseTransactions converts a values matrix with header
// id,customer_id,date,amount.
func parseTransactions(values [][]interface{}) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: transactions range is empty", source.ErrInvalidShape)
	}
	out := make([]core.Transaction, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		id, err := parseID(safeGet(row, 0))
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+1, err)
		}
		customerID, err := parseID(safeGet(row, 1))
		if err != nil {
			return nil, fmt.Errorf("transactions row %d customer: %w", i+1, err)
		}
		date, err := parseDate(safeGet(row, 2))
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+1, err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(safeGet(row, 3)))
		if err != nil {
			return nil, fmt.Errorf("transactions row %d amount: %w", i+1, err)
		}
		out = append(out, core.Transaction{
			ID:         id,
			CustomerID: customerID,
			Date:       date,
			Amount:     amount,
		})
	}
	return out, nil
}

// serialEpoch is day zero of spreadsheet date serial numbers.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate accepts an ISO date or a date serial number; the fractional
// (time of day) part of a serial is dropped.
func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(core.DateLayout, s); err == nil {
		return s, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return "", fmt.Errorf("%w: invalid date %q", source.ErrInvalidShape, s)
	}
	days := int(d.IntPart())
	return serialEpoch.AddDate(0, 0, days).Format(core.DateLayout), nil
}

// parseID accepts integers rendered either as "7" or as "7.0" (the
// unformatted numeric form Sheets can return).
func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return int(d.IntPart()), nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
