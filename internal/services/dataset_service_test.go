package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/source"
	"txdash/internal/source/memory"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context) (*core.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*core.Dataset)
	return ds, args.Error(1)
}

type blockingFetcher struct{}

func (blockingFetcher) Fetch(ctx context.Context) (*core.Dataset, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func bufferLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Level: slog.LevelDebug, Output: buf})
}

func TestLoadUsesPrimaryOnSuccess(t *testing.T) {
	remote := &core.Dataset{
		Customers:    []core.Customer{{ID: 1, Name: "Remote"}},
		Transactions: nil,
		Origin:       core.OriginRemote,
	}
	primary := &mockFetcher{}
	primary.On("Fetch", mock.Anything).Return(remote, nil)

	svc := NewDatasetService(primary, memory.NewFallback(), time.Second, log.Discard())
	ds := svc.Load(context.Background())

	assert.Same(t, remote, ds)
	primary.AssertExpectations(t)
}

func TestLoadFallsBackOnFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{name: "network error", err: errors.New("dial tcp: connection refused"), wantType: log.ErrorTypeNetwork},
		{name: "shape error", err: fmt.Errorf("%w: customers missing", source.ErrInvalidShape), wantType: log.ErrorTypeShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &mockFetcher{}
			primary.On("Fetch", mock.Anything).Return(nil, tt.err)

			var buf bytes.Buffer
			svc := NewDatasetService(primary, memory.NewFallback(), time.Second, bufferLogger(&buf))
			ds := svc.Load(context.Background())

			require.NotNil(t, ds)
			assert.Equal(t, core.OriginFallback, ds.Origin)
			assert.Len(t, ds.Customers, 5)
			assert.Len(t, ds.Transactions, 9)
			assert.Contains(t, buf.String(), "using fallback dataset")
			assert.Contains(t, buf.String(), tt.wantType)
		})
	}
}

func TestLoadTimesOut(t *testing.T) {
	var buf bytes.Buffer
	svc := NewDatasetService(blockingFetcher{}, memory.NewFallback(), 20*time.Millisecond, bufferLogger(&buf))

	done := make(chan *core.Dataset, 1)
	go func() { done <- svc.Load(context.Background()) }()

	select {
	case ds := <-done:
		assert.Equal(t, core.OriginFallback, ds.Origin)
		assert.Contains(t, buf.String(), log.ErrorTypeTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("Load did not honour the timeout")
	}
}

func TestLoadWithoutPrimary(t *testing.T) {
	ds := NewDatasetService(nil, memory.NewFallback(), 0, nil).Load(context.Background())
	assert.Len(t, ds.Transactions, 9)
}

func TestLoadWithoutAnySource(t *testing.T) {
	ds := NewDatasetService(nil, nil, 0, log.Discard()).Load(context.Background())
	require.NotNil(t, ds)
	assert.Empty(t, ds.Transactions)
}

func TestLoadLogsIntegrityProblems(t *testing.T) {
	broken := &core.Dataset{
		Customers:    []core.Customer{{ID: 1, Name: "A"}},
		Transactions: []core.Transaction{{ID: 1, CustomerID: 7, Date: "2022-01-01"}},
		Origin:       core.OriginRemote,
	}
	primary := &mockFetcher{}
	primary.On("Fetch", mock.Anything).Return(broken, nil)

	var buf bytes.Buffer
	ds := NewDatasetService(primary, memory.NewFallback(), time.Second, bufferLogger(&buf)).Load(context.Background())

	assert.Same(t, broken, ds)
	assert.Contains(t, buf.String(), log.ErrorTypeIntegrity)
}
