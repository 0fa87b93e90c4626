// Package remote fetches the dataset from an HTTP endpoint serving a JSON
// document with "customers" and "transactions" arrays.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"txdash/internal/core"
	"txdash/internal/source"
)

// DefaultURL is the public endpoint the dashboard reads from.
const DefaultURL = "https://6694c0494bd61d8314c87470.mockapi.io/api/Data/transactions"

// maxBodyBytes bounds the document size read from the endpoint.
const maxBodyBytes = 8 << 20

type Client struct {
	url        string
	httpClient *http.Client
}

var _ source.Fetcher = (*Client)(nil)

type wireDocument struct {
	Customers    json.RawMessage `json:"customers"`
	Transactions json.RawMessage `json:"transactions"`
}

type wireCustomer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wireTransaction struct {
	ID         int             `json:"id"`
	CustomerID int             `json:"customer_id"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
}

// New returns a client for url. A nil httpClient gets a pooled client with
// transport timeouts.
func New(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &Client{url: url, httpClient: httpClient}
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport}
}

// Fetch performs the GET and maps the document into a dataset.
func (c *Client) Fetch(ctx context.Context) (*core.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: unexpected status %d", c.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return Decode(body)
}

// Decode validates the document shape and maps it into a dataset.
func Decode(body []byte) (*core.Dataset, error) {
	var doc wireDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		// Well-formed JSON that is not an object (e.g. a bare array) is a
		// shape failure rather than a syntax failure.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: document is %s", source.ErrInvalidShape, typeErr.Value)
		}
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if !isArray(doc.Customers) || !isArray(doc.Transactions) {
		return nil, fmt.Errorf("%w: customers and transactions must be arrays", source.ErrInvalidShape)
	}

	var customers []wireCustomer
	if err := json.Unmarshal(doc.Customers, &customers); err != nil {
		return nil, fmt.Errorf("%w: decode customers: %v", source.ErrInvalidShape, err)
	}
	var transactions []wireTransaction
	if err := json.Unmarshal(doc.Transactions, &transactions); err != nil {
		return nil, fmt.Errorf("%w: decode transactions: %v", source.ErrInvalidShape, err)
	}

	ds := &core.Dataset{
		Customers:    make([]core.Customer, 0, len(customers)),
		Transactions: make([]core.Transaction, 0, len(transactions)),
		Origin:       core.OriginRemote,
	}
	for _, c := range customers {
		ds.Customers = append(ds.Customers, core.Customer{ID: c.ID, Name: c.Name})
	}
	for _, t := range transactions {
		ds.Transactions = append(ds.Transactions, core.Transaction{
			ID:         t.ID,
			CustomerID: t.CustomerID,
			Date:       t.Date,
			Amount:     t.Amount,
		})
	}
	return ds, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
