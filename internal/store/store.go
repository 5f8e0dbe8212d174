package store

import (
	"context"

	"github.com/splitstat/splitstat/internal/dataset"
)

// Store defines the persistence operations for datasets and reports.
type Store interface {
	// Dataset operations
	CreateDataset(ctx context.Context, name string, seed uint64, records []dataset.Record) (*Dataset, error)
	GetDataset(ctx context.Context, name string) (*Dataset, error)
	LatestDataset(ctx context.Context) (*Dataset, error)
	ListDatasets(ctx context.Context) ([]*Dataset, error)
	DeleteDataset(ctx context.Context, name string) error
	GetRecords(ctx context.Context, datasetID string) ([]dataset.Record, error)

	// Report operations
	SaveReport(ctx context.Context, datasetID string, body []byte) (*SavedReport, error)
	LatestReport(ctx context.Context) (*SavedReport, error)

	// Lifecycle
	Close() error
}
