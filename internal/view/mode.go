package view

import "fmt"

type ModeKind int

const (
	AllTransactions ModeKind = iota
	CustomerFocused
)

func (k ModeKind) String() string {
	switch k {
	case AllTransactions:
		return "all_transactions"
	case CustomerFocused:
		return "customer_focused"
	default:
		return fmt.Sprintf("mode(%d)", int(k))
	}
}

// Mode is the navigation state. CustomerID is only meaningful when Kind is
// CustomerFocused.
type Mode struct {
	Kind       ModeKind
	CustomerID int
}

func AllMode() Mode { return Mode{Kind: AllTransactions} }

func FocusMode(customerID int) Mode {
	return Mode{Kind: CustomerFocused, CustomerID: customerID}
}

func (m Mode) Focused() bool { return m.Kind == CustomerFocused }

func (m Mode) String() string {
	if m.Focused() {
		return fmt.Sprintf("%s(%d)", m.Kind, m.CustomerID)
	}
	return m.Kind.String()
}
