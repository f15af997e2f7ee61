// Package store defines persistence for parsed DEF datasets.
package store

import (
	"context"
	"time"

	"github.com/cellgrid/defnet/pkg/defnet"
)

// Run summarizes one stored parse.
type Run struct {
	ID        string
	Design    string
	ParsedAt  time.Time
	Instances int
	Nets      int
}

// Store persists and retrieves parsed datasets, keyed by their run id.
type Store interface {
	Close() error

	// SaveDataset stores a dataset, replacing any run with the same id.
	SaveDataset(ctx context.Context, ds *defnet.Dataset) error
	// GetDataset returns the dataset with the given run id.
	GetDataset(ctx context.Context, id string) (*defnet.Dataset, bool, error)
	// GetLatestByDesign returns the most recently parsed dataset for a
	// design name.
	GetLatestByDesign(ctx context.Context, design string) (*defnet.Dataset, bool, error)
	// ListRuns returns stored runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
