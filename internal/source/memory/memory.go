package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"txdash/internal/core"
	"txdash/internal/source"
)

// Store serves a fixed dataset. The zero value is not useful; use New or
// NewFallback.
type Store struct {
	customers    []core.Customer
	transactions []core.Transaction
	origin       core.Origin
}

var _ source.Fetcher = (*Store)(nil)

func New(customers []core.Customer, transactions []core.Transaction, origin core.Origin) *Store {
	return &Store{customers: customers, transactions: transactions, origin: origin}
}

// NewFallback returns the store holding the built-in fallback dataset.
func NewFallback() *Store {
	return New(fallbackCustomers(), fallbackTransactions(), core.OriginFallback)
}

// Fetch returns a fresh copy of the stored dataset.
func (s *Store) Fetch(_ context.Context) (*core.Dataset, error) {
	return &core.Dataset{
		Customers:    append([]core.Customer(nil), s.customers...),
		Transactions: append([]core.Transaction(nil), s.transactions...),
		Origin:       s.origin,
	}, nil
}

// Fallback returns the built-in 5 customer / 9 transaction dataset.
func Fallback() *core.Dataset {
	ds, _ := NewFallback().Fetch(context.Background())
	return ds
}

func fallbackCustomers() []core.Customer {
	return []core.Customer{
		{ID: 1, Name: "Ahmed Ali"},
		{ID: 2, Name: "Aya Elsayed"},
		{ID: 3, Name: "Mina Adel"},
		{ID: 4, Name: "Sarah Reda"},
		{ID: 5, Name: "Mohamed Sayed"},
	}
}

func fallbackTransactions() []core.Transaction {
	t := func(id, customer int, date string, amount int64) core.Transaction {
		return core.Transaction{ID: id, CustomerID: customer, Date: date, Amount: decimal.NewFromInt(amount)}
	}
	return []core.Transaction{
		t(1, 1, "2022-01-01", 1000),
		t(2, 1, "2022-01-02", 2000),
		t(3, 2, "2022-01-01", 550),
		t(4, 3, "2022-01-01", 500),
		t(5, 2, "2022-01-02", 1300),
		t(6, 4, "2022-01-01", 750),
		t(7, 3, "2022-01-02", 1250),
		t(8, 5, "2022-01-01", 2500),
		t(9, 5, "2022-01-02", 875),
	}
}
