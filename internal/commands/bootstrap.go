package commands

import (
	"context"
	"fmt"
	"io"

	"txdash/internal/config"
	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/services"
	"txdash/internal/source"
	"txdash/internal/source/google"
	"txdash/internal/source/memory"
	"txdash/internal/source/remote"
)

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentCLI,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// newPrimarySource builds the configured data source. The fallback source
// serves as its own primary when selected explicitly.
func newPrimarySource(ctx context.Context, cfg *config.Config) (source.Fetcher, error) {
	switch cfg.DataSource {
	case config.SourceSheets:
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:     cfg.GoogleSpreadsheetID,
			CustomersRange:    cfg.GoogleCustomersRange,
			TransactionsRange: cfg.GoogleTransactionsRange,
			CredentialsJSON:   cfg.GoogleServiceAccountJSON,
			CredentialsFile:   cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets source: %w", err)
		}
		return client, nil
	case config.SourceFallback:
		return memory.NewFallback(), nil
	default:
		return remote.New(cfg.DataURL, nil), nil
	}
}

// loadDataset runs the one-shot load. It never fails: a source that cannot
// be constructed or fetched degrades to the fallback dataset.
func loadDataset(ctx context.Context, cfg *config.Config, logger *log.Logger) *core.Dataset {
	primary, err := newPrimarySource(ctx, cfg)
	if err != nil {
		logger.WarnContext(ctx, "Data source unavailable",
			log.FieldSource, cfg.DataSource,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		primary = nil
	}
	svc := services.NewDatasetService(primary, memory.NewFallback(), cfg.LoadTimeout, logger)
	return svc.Load(ctx)
}
