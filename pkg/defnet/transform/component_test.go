package transform

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// recordingWarner collects warnings for assertions.
type recordingWarner struct {
	mu       sync.Mutex
	warnings []string
}

func (w *recordingWarner) Warnf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warnings = append(w.warnings, fmt.Sprintf(format, args...))
}

func (w *recordingWarner) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.warnings)
}

func TestComponentFormatBasic(t *testing.T) {
	f := NewComponentFormatter(nil)

	rec := f.Format([]string{"-", "U1", "INVX1", "+ PLACED", "( 100 200 )", "N"})

	if rec.InstanceName != "U1" || rec.CellName != "INVX1" {
		t.Errorf("Expected U1/INVX1, got %s/%s", rec.InstanceName, rec.CellName)
	}
	if rec.Placement == nil {
		t.Fatal("Expected placement to be extracted")
	}
	if rec.Placement.X != 100 || rec.Placement.Y != 200 || rec.Placement.Orientation != "N" {
		t.Errorf("Expected (100, 200, N), got (%d, %d, %s)",
			rec.Placement.X, rec.Placement.Y, rec.Placement.Orientation)
	}
}

func TestComponentFormatSentinel(t *testing.T) {
	warner := &recordingWarner{}
	f := NewComponentFormatter(warner)

	rec := f.Format([]string{"-", "U1"})

	if rec.InstanceName != "UNKNOWN" || rec.CellName != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN sentinel, got %s/%s", rec.InstanceName, rec.CellName)
	}
	if len(rec.Features) != 0 {
		t.Errorf("Sentinel record should have no features, got %v", rec.Features)
	}
	if warner.count() != 1 {
		t.Errorf("Expected one warning, got %d", warner.count())
	}
}

func TestComponentFeatureScalarMultiAsymmetry(t *testing.T) {
	f := NewComponentFormatter(nil)

	rec := f.Format([]string{"-", "U1", "INVX1",
		"+ SINGLE", "v1",
		"+ DOUBLE", "v1", "v2",
		"+ EMPTY",
	})

	single, ok := rec.Features["SINGLE"]
	if !ok || single.Kind != FeatureScalar || single.Value != "v1" {
		t.Errorf("Expected Scalar v1, got %+v", single)
	}
	if len(single.Values) != 0 {
		t.Error("A single value must never be a one-element Multi")
	}

	double, ok := rec.Features["DOUBLE"]
	if !ok || double.Kind != FeatureMulti {
		t.Fatalf("Expected Multi, got %+v", double)
	}
	if !reflect.DeepEqual(double.Values, []string{"v1", "v2"}) {
		t.Errorf("Expected [v1 v2], got %v", double.Values)
	}

	empty, ok := rec.Features["EMPTY"]
	if !ok || empty.Kind != FeatureMulti || len(empty.Values) != 0 {
		t.Errorf("Expected empty Multi for valueless feature, got %+v", empty)
	}
}

func TestComponentPlacementScalarGroup(t *testing.T) {
	f := NewComponentFormatter(nil)

	// A lone coordinate group defaults the orientation to N.
	rec := f.Format([]string{"-", "U1", "INVX1", "+ FIXED", "( 5 7 )"})

	if rec.Placement == nil {
		t.Fatal("Expected placement from scalar group")
	}
	if rec.Placement.X != 5 || rec.Placement.Y != 7 || rec.Placement.Orientation != "N" {
		t.Errorf("Expected (5, 7, N), got %+v", rec.Placement)
	}
}

func TestComponentPlacementPriority(t *testing.T) {
	f := NewComponentFormatter(nil)

	// PLACED beats FIXED when both are present.
	rec := f.Format([]string{"-", "U1", "INVX1",
		"+ FIXED", "( 1 2 )", "S",
		"+ PLACED", "( 3 4 )", "W",
	})

	if rec.Placement == nil {
		t.Fatal("Expected placement")
	}
	if rec.Placement.X != 3 || rec.Placement.Y != 4 || rec.Placement.Orientation != "W" {
		t.Errorf("Expected PLACED coordinates (3, 4, W), got %+v", rec.Placement)
	}
}

func TestComponentPlacementNonIntegerKeepsRaw(t *testing.T) {
	warner := &recordingWarner{}
	f := NewComponentFormatter(warner)

	rec := f.Format([]string{"-", "U1", "INVX1", "+ PLACED", "( 10.5 20 )", "N"})

	if rec.Placement == nil {
		t.Fatal("Non-integer coordinates must not drop the placement")
	}
	if rec.Placement.Numeric() {
		t.Error("Placement should report non-numeric coordinates")
	}
	if rec.Placement.RawX != "10.5" || rec.Placement.RawY != "20" {
		t.Errorf("Expected raw strings 10.5/20, got %q/%q", rec.Placement.RawX, rec.Placement.RawY)
	}
	if warner.count() != 1 {
		t.Errorf("Expected one warning, got %d", warner.count())
	}
}

func TestComponentNoPlacement(t *testing.T) {
	f := NewComponentFormatter(nil)

	tests := []struct {
		name   string
		tokens []string
	}{
		{"no placement feature", []string{"-", "U1", "INVX1", "+ SOURCE", "NETLIST"}},
		{"scalar not a group", []string{"-", "U1", "INVX1", "+ PLACED", "SOMEWHERE"}},
		{"multi too short", []string{"-", "U1", "INVX1", "+ PLACED"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.Format(tt.tokens)
			if rec.Placement != nil {
				t.Errorf("Expected no placement, got %+v", rec.Placement)
			}
		})
	}
}
