// Package memstore is an in-memory store.Store implementation, used by
// tests and short-lived tooling.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cellgrid/defnet/pkg/defnet"
	"github.com/cellgrid/defnet/pkg/defnet/store"
	"github.com/cellgrid/defnet/pkg/defnet/transform"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*defnet.Dataset
	order    []string // run ids in insertion order
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{datasets: make(map[string]*defnet.Dataset)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveDataset stores a deep copy of the dataset.
func (s *Store) SaveDataset(ctx context.Context, ds *defnet.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[ds.ID]; !ok {
		s.order = append(s.order, ds.ID)
	}
	s.datasets[ds.ID] = copyDataset(ds)
	return nil
}

// GetDataset returns the dataset with the given run id.
func (s *Store) GetDataset(ctx context.Context, id string) (*defnet.Dataset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ds, ok := s.datasets[id]; ok {
		return copyDataset(ds), true, nil
	}
	return nil, false, nil
}

// GetLatestByDesign returns the most recently saved dataset for a design.
func (s *Store) GetLatestByDesign(ctx context.Context, design string) (*defnet.Dataset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		ds := s.datasets[s.order[i]]
		if ds.Header.Design == design {
			return copyDataset(ds), true, nil
		}
	}
	return nil, false, nil
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]store.Run, 0, len(s.order))
	for _, id := range s.order {
		ds := s.datasets[id]
		runs = append(runs, store.Run{
			ID:        ds.ID,
			Design:    ds.Header.Design,
			ParsedAt:  ds.ParsedAt,
			Instances: len(ds.IDToInstance),
			Nets:      len(ds.IDToNet),
		})
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ParsedAt.After(runs[j].ParsedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func copyDataset(ds *defnet.Dataset) *defnet.Dataset {
	out := &defnet.Dataset{
		ID:           ds.ID,
		Header:       ds.Header,
		InstanceToID: make(map[string]int, len(ds.InstanceToID)),
		IDToInstance: make(map[int]defnet.InstanceInfo, len(ds.IDToInstance)),
		NetToID:      make(map[string]int, len(ds.NetToID)),
		IDToNet:      make(map[int]defnet.NetInfo, len(ds.IDToNet)),
		ParsedAt:     ds.ParsedAt,
	}
	for k, v := range ds.InstanceToID {
		out.InstanceToID[k] = v
	}
	for k, v := range ds.IDToInstance {
		if v.Placement != nil {
			p := *v.Placement
			v.Placement = &p
		}
		out.IDToInstance[k] = v
	}
	for k, v := range ds.NetToID {
		out.NetToID[k] = v
	}
	for k, v := range ds.IDToNet {
		conns := make([]transform.Connection, len(v.Connections))
		copy(conns, v.Connections)
		v.Connections = conns
		out.IDToNet[k] = v
	}
	return out
}
