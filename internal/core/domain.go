package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar-date form used for transaction dates.
const DateLayout = "2006-01-02"

const (
	OriginRemote   Origin = "remote"
	OriginSheets   Origin = "sheets"
	OriginFallback Origin = "fallback"
)

type (
	// Origin records where a Dataset was loaded from.
	Origin string

	Customer struct {
		ID   int
		Name string
	}

	Transaction struct {
		ID         int
		CustomerID int
		Date       string // YYYY-MM-DD
		Amount     decimal.Decimal
	}

	// Dataset is loaded atomically and read-only for the rest of the session.
	Dataset struct {
		Customers    []Customer
		Transactions []Transaction
		Origin       Origin
	}
)

var (
	ErrDuplicateCustomer    = errors.New("duplicate customer id")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	ErrUnknownCustomer      = errors.New("unknown customer")
	ErrInvalidDate          = errors.New("invalid date")
	ErrNegativeAmount       = errors.New("negative amount")
)

// AmountString renders the amount the way it is matched and displayed.
func (t Transaction) AmountString() string {
	return t.Amount.String()
}

// Validate checks the dataset invariants. Every violation is reported;
// the returned error is nil when the dataset is consistent.
func (d *Dataset) Validate() error {
	var errs []error

	customers := make(map[int]struct{}, len(d.Customers))
	for _, c := range d.Customers {
		if _, dup := customers[c.ID]; dup {
			errs = append(errs, fmt.Errorf("customer %d: %w", c.ID, ErrDuplicateCustomer))
			continue
		}
		customers[c.ID] = struct{}{}
	}

	seen := make(map[int]struct{}, len(d.Transactions))
	for _, t := range d.Transactions {
		if _, dup := seen[t.ID]; dup {
			errs = append(errs, fmt.Errorf("transaction %d: %w", t.ID, ErrDuplicateTransaction))
		}
		seen[t.ID] = struct{}{}
		if _, ok := customers[t.CustomerID]; !ok {
			errs = append(errs, fmt.Errorf("transaction %d references customer %d: %w", t.ID, t.CustomerID, ErrUnknownCustomer))
		}
		if _, err := time.Parse(DateLayout, t.Date); err != nil {
			errs = append(errs, fmt.Errorf("transaction %d date %q: %w", t.ID, t.Date, ErrInvalidDate))
		}
		if t.Amount.IsNegative() {
			errs = append(errs, fmt.Errorf("transaction %d amount %s: %w", t.ID, t.Amount, ErrNegativeAmount))
		}
	}

	return errors.Join(errs...)
}

// CustomerIndex resolves customers by id.
type CustomerIndex struct {
	byID map[int]Customer
}

// NewCustomerIndex indexes customers by id. On duplicate ids the first
// occurrence wins.
func NewCustomerIndex(customers []Customer) CustomerIndex {
	idx := CustomerIndex{byID: make(map[int]Customer, len(customers))}
	for _, c := range customers {
		if _, ok := idx.byID[c.ID]; !ok {
			idx.byID[c.ID] = c
		}
	}
	return idx
}

// Lookup returns the customer with the given id, if any.
func (i CustomerIndex) Lookup(id int) (Customer, bool) {
	c, ok := i.byID[id]
	return c, ok
}

// Index returns a CustomerIndex over the dataset's customers.
func (d *Dataset) Index() CustomerIndex {
	return NewCustomerIndex(d.Customers)
}
