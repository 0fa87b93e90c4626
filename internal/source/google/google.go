// Package google reads the dataset from a Google Sheets spreadsheet with a
// customers tab (id, name) and a transactions tab (id, customer_id, date,
// amount). The first row of each range is a header.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/source"
)

const (
	DefaultCustomersRange    = "Customers!A:B"
	DefaultTransactionsRange = "Transactions!A:D"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	customersRange    string
	transactionsRange string
}

var _ source.Fetcher = (*Client)(nil)

// Config selects the spreadsheet, ranges and credentials.
type Config struct {
	SpreadsheetID     string
	CustomersRange    string
	TransactionsRange string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.CustomersRange == "" {
		cfg.CustomersRange = DefaultCustomersRange
	}
	if cfg.TransactionsRange == "" {
		cfg.TransactionsRange = DefaultTransactionsRange
	}

	credentialsJSON, err := readCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets source initialized",
		log.FieldComponent, log.ComponentSource,
		"spreadsheet_id", cfg.SpreadsheetID,
		"customers_range", cfg.CustomersRange,
		"transactions_range", cfg.TransactionsRange)

	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test server.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	if cfg.CustomersRange == "" {
		cfg.CustomersRange = DefaultCustomersRange
	}
	if cfg.TransactionsRange == "" {
		cfg.TransactionsRange = DefaultTransactionsRange
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		customersRange:    cfg.CustomersRange,
		transactionsRange: cfg.TransactionsRange,
	}
}

func readCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Fetch reads both ranges in a single batch call.
func (c *Client) Fetch(ctx context.Context) (*core.Dataset, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(c.customersRange, c.transactionsRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("batch get values: %w", err)
	}
	if len(resp.ValueRanges) != 2 || resp.ValueRanges[0] == nil || resp.ValueRanges[1] == nil {
		return nil, fmt.Errorf("%w: expected 2 value ranges, got %d", source.ErrInvalidShape, len(resp.ValueRanges))
	}

	customers, err := parseCustomers(resp.ValueRanges[0].Values)
	if err != nil {
		return nil, err
	}
	transactions, err := parseTransactions(resp.ValueRanges[1].Values)
	if err != nil {
		return nil, err
	}

	return &core.Dataset{
		Customers:    customers,
		Transactions: transactions,
		Origin:       core.OriginSheets,
	}, nil
}
