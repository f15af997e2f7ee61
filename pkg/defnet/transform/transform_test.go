package transform

import (
	"fmt"
	"testing"

	"github.com/cellgrid/defnet/pkg/defnet/scan"
)

func TestSectionTransformerPipeline(t *testing.T) {
	sec := NewSectionTransformer[*ComponentRecord](
		TrimCleaner{}, NewTokenizer(), NewComponentFormatter(nil), false)

	rec := sec.Transform(scan.RawSection{Head: "- U1 INVX1 + PLACED ( 100 200 ) N"})

	if rec.InstanceName != "U1" || rec.CellName != "INVX1" {
		t.Errorf("Expected U1/INVX1, got %s/%s", rec.InstanceName, rec.CellName)
	}
	if rec.Placement == nil || rec.Placement.X != 100 {
		t.Errorf("Expected placement at x=100, got %+v", rec.Placement)
	}
}

func TestSectionTransformerAttachesRawLines(t *testing.T) {
	raw := []string{"- U1 INVX1", "  + PLACED ( 1 2 ) N ;"}

	withRaw := NewSectionTransformer[*ComponentRecord](
		TrimCleaner{}, NewTokenizer(), NewComponentFormatter(nil), true)
	rec := withRaw.Transform(scan.RawSection{Head: "- U1 INVX1 + PLACED ( 1 2 ) N", RawLines: raw})
	if len(rec.RawLines) != 2 {
		t.Errorf("Expected raw lines attached, got %v", rec.RawLines)
	}

	withoutRaw := NewSectionTransformer[*ComponentRecord](
		TrimCleaner{}, NewTokenizer(), NewComponentFormatter(nil), false)
	rec = withoutRaw.Transform(scan.RawSection{Head: "- U1 INVX1", RawLines: raw})
	if len(rec.RawLines) != 0 {
		t.Errorf("Expected no raw lines, got %v", rec.RawLines)
	}
}

func TestBlockTransformerPreservesOrder(t *testing.T) {
	const n = 40

	sections := make([]scan.RawSection, n)
	for i := range sections {
		sections[i] = scan.RawSection{Head: fmt.Sprintf("- C%d CELL%d", i, i)}
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			block := NewComponentBlock(nil, workers, false)
			out := block.Transform(sections)

			if len(out) != n {
				t.Fatalf("Expected %d records, got %d", n, len(out))
			}
			for i, rec := range out {
				want := fmt.Sprintf("C%d", i)
				if rec.InstanceName != want {
					t.Errorf("Record %d: expected %s, got %s", i, want, rec.InstanceName)
				}
			}
		})
	}
}

func TestBlockTransformerEmptyBlock(t *testing.T) {
	block := NewNetBlock(nil, 1, false)

	out := block.Transform(nil)
	if len(out) != 0 {
		t.Errorf("Expected no records for an absent block, got %d", len(out))
	}
}

func TestSimpleNetBlockStripsTerminator(t *testing.T) {
	block := NewSimpleNetBlock(nil, 1)

	out := block.Transform([]scan.RawSection{
		{Head: "- net1 ( U1 A ) ( U2 B ) ;"},
	})

	if len(out) != 1 {
		t.Fatalf("Expected one record, got %d", len(out))
	}
	if len(out[0].Connections) != 2 {
		t.Errorf("Expected two connections, got %v", out[0].Connections)
	}
}
