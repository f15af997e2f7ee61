package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/cellgrid/defnet/pkg/defnet"
	"github.com/cellgrid/defnet/pkg/defnet/transform"
)

func sampleDataset(id, design string, parsedAt time.Time) *defnet.Dataset {
	return &defnet.Dataset{
		ID: id,
		Header: defnet.HeaderInfo{
			Design: design,
			Units:  defnet.Units{Distance: "MICRONS", DatabaseUnitsPerMicron: 1000},
		},
		InstanceToID: map[string]int{"U1": 0},
		IDToInstance: map[int]defnet.InstanceInfo{
			0: {
				InstanceName: "U1",
				CellName:     "INVX1",
				Placement:    &transform.Placement{X: 100, Y: 200, Orientation: "N"},
			},
		},
		NetToID: map[string]int{"n1": 0},
		IDToNet: map[int]defnet.NetInfo{
			0: {NetName: "n1", Connections: []transform.Connection{{InstanceName: "U1", PinName: "A"}}},
		},
		ParsedAt: parsedAt,
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	ds := sampleDataset("run1", "top", time.Now())
	if err := s.SaveDataset(ctx, ds); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.GetDataset(ctx, "run1")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("Expected run1 to be found")
	}
	if got.Header.Design != "top" || got.InstanceToID["U1"] != 0 {
		t.Errorf("Unexpected dataset %+v", got)
	}
	if got.IDToInstance[0].Placement == nil || got.IDToInstance[0].Placement.X != 100 {
		t.Errorf("Placement not preserved: %+v", got.IDToInstance[0].Placement)
	}
}

func TestGetMissing(t *testing.T) {
	s := New()

	_, found, err := s.GetDataset(context.Background(), "absent")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Expected absent run to report not found")
	}
}

func TestCopiesIsolateCallers(t *testing.T) {
	ctx := context.Background()
	s := New()

	ds := sampleDataset("run1", "top", time.Now())
	if err := s.SaveDataset(ctx, ds); err != nil {
		t.Fatal(err)
	}

	// Mutations on the saved original and on a retrieved copy must not leak
	// into the store.
	ds.Header.Design = "mutated"
	ds.IDToInstance[0].Placement.X = -1

	got, _, err := s.GetDataset(ctx, "run1")
	if err != nil {
		t.Fatal(err)
	}
	got.InstanceToID["evil"] = 99
	got.IDToInstance[0].Placement.Y = -1

	fresh, _, err := s.GetDataset(ctx, "run1")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Header.Design != "top" {
		t.Errorf("Stored design mutated: %q", fresh.Header.Design)
	}
	if fresh.IDToInstance[0].Placement.X != 100 || fresh.IDToInstance[0].Placement.Y != 200 {
		t.Errorf("Stored placement mutated: %+v", fresh.IDToInstance[0].Placement)
	}
	if _, ok := fresh.InstanceToID["evil"]; ok {
		t.Error("Retrieved copy leaked back into the store")
	}
}

func TestGetLatestByDesign(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Now()
	for _, ds := range []*defnet.Dataset{
		sampleDataset("run1", "top", base),
		sampleDataset("run2", "other", base.Add(time.Second)),
		sampleDataset("run3", "top", base.Add(2*time.Second)),
	} {
		if err := s.SaveDataset(ctx, ds); err != nil {
			t.Fatal(err)
		}
	}

	got, found, err := s.GetLatestByDesign(ctx, "top")
	if err != nil {
		t.Fatal(err)
	}
	if !found || got.ID != "run3" {
		t.Errorf("Expected run3, got found=%v id=%s", found, got.ID)
	}

	_, found, err = s.GetLatestByDesign(ctx, "unknown")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Expected no dataset for unknown design")
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Now()
	for i, id := range []string{"run1", "run2", "run3"} {
		ds := sampleDataset(id, "top", base.Add(time.Duration(i)*time.Second))
		if err := s.SaveDataset(ctx, ds); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "run3" || runs[2].ID != "run1" {
		t.Errorf("Expected newest first, got %s .. %s", runs[0].ID, runs[2].ID)
	}
	if runs[0].Instances != 1 || runs[0].Nets != 1 {
		t.Errorf("Unexpected counts %+v", runs[0])
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 runs with limit, got %d", len(limited))
	}
}

func TestSaveReplacesSameID(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.SaveDataset(ctx, sampleDataset("run1", "top", time.Now())); err != nil {
		t.Fatal(err)
	}
	updated := sampleDataset("run1", "revised", time.Now())
	if err := s.SaveDataset(ctx, updated); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.GetDataset(ctx, "run1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Header.Design != "revised" {
		t.Errorf("Expected replacement, got %q", got.Header.Design)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("Replacing a run must not duplicate it, got %d runs", len(runs))
	}
}
