package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/source"
)

// DefaultLoadTimeout bounds the primary fetch so a hung endpoint cannot
// block the first render indefinitely.
const DefaultLoadTimeout = 10 * time.Second

// DatasetService loads the session dataset, degrading to the fallback
// dataset when the primary source fails.
type DatasetService struct {
	primary  source.Fetcher
	fallback source.Fetcher
	timeout  time.Duration
	logger   *log.Logger
}

func NewDatasetService(primary, fallback source.Fetcher, timeout time.Duration, logger *log.Logger) *DatasetService {
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DatasetService{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger.WithComponent(log.ComponentDataset),
	}
}

// Load always returns a usable dataset: the primary source's on success,
// otherwise the fallback. Failures are logged, never returned.
func (s *DatasetService) Load(ctx context.Context) *core.Dataset {
	start := time.Now()

	ds, err := s.fetchPrimary(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Primary data source failed, using fallback dataset",
			log.NewFields().
				WithOperation(log.OpLoad).
				WithError(err).
				WithErrorType(classify(err)).
				ToSlice()...)
		ds = s.loadFallback(ctx)
	}

	if err := ds.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Dataset failed integrity checks, affected records will be skipped",
			log.FieldOperation, log.OpValidate,
			log.FieldErrorType, log.ErrorTypeIntegrity,
			log.FieldError, err.Error())
	}

	s.logger.InfoContext(ctx, "Dataset loaded",
		log.NewFields().
			WithOperation(log.OpLoad).
			WithDataset(string(ds.Origin), len(ds.Customers), len(ds.Transactions)).
			ToSlice()...)
	s.logger.DebugContext(ctx, "Dataset load timing", log.FieldDuration, time.Since(start).Milliseconds())
	return ds
}

func (s *DatasetService) fetchPrimary(ctx context.Context) (*core.Dataset, error) {
	if s.primary == nil {
		return nil, errors.New("no primary source configured")
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ds, err := s.primary.Fetch(cctx)
	if err != nil {
		return nil, fmt.Errorf("fetch primary: %w", err)
	}
	if ds == nil {
		return nil, fmt.Errorf("fetch primary: %w: empty result", source.ErrInvalidShape)
	}
	return ds, nil
}

func (s *DatasetService) loadFallback(ctx context.Context) *core.Dataset {
	if s.fallback != nil {
		ds, err := s.fallback.Fetch(ctx)
		if err == nil && ds != nil {
			return ds
		}
		s.logger.ErrorContext(ctx, "Fallback source failed, serving empty dataset",
			log.FieldOperation, log.OpLoad, log.FieldError, fmt.Sprint(err))
	}
	return &core.Dataset{Origin: core.OriginFallback}
}

func classify(err error) string {
	switch {
	case errors.Is(err, source.ErrInvalidShape):
		return log.ErrorTypeShape
	case errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTypeTimeout
	default:
		return log.ErrorTypeNetwork
	}
}
