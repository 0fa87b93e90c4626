package source

import (
	"context"
	"errors"

	"txdash/internal/core"
)

// ErrInvalidShape reports a document without the expected customers and
// transactions collections.
var ErrInvalidShape = errors.New("invalid response structure")

// Fetcher retrieves a complete dataset from one origin.
type Fetcher interface {
	Fetch(ctx context.Context) (*core.Dataset, error)
}
