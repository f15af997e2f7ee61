// Package analytics computes summary statistics over parsed DEF datasets.
package analytics

import (
	"sort"

	"github.com/cellgrid/defnet/pkg/defnet"
)

// CellCount is one cell type and the number of instances using it.
type CellCount struct {
	CellName string
	Count    int
}

// Report summarizes one dataset.
type Report struct {
	Design            string
	Components        int
	Placed            int
	PlacementCoverage float64 // fraction of components with placement
	CellUsage         []CellCount

	Nets         int
	Connections  int
	TwoPointNets int
	FanoutMin    int
	FanoutMax    int
	FanoutMean   float64
}

// Analyze computes the report for a dataset. topCells bounds the cell usage
// list; values below 1 keep every cell.
func Analyze(ds *defnet.Dataset, topCells int) Report {
	r := Report{Design: ds.Header.Design}

	cells := make(map[string]int)
	for _, info := range ds.IDToInstance {
		r.Components++
		if info.Placement != nil {
			r.Placed++
		}
		cells[info.CellName]++
	}
	if r.Components > 0 {
		r.PlacementCoverage = float64(r.Placed) / float64(r.Components)
	}

	r.CellUsage = make([]CellCount, 0, len(cells))
	for name, count := range cells {
		r.CellUsage = append(r.CellUsage, CellCount{CellName: name, Count: count})
	}
	sort.Slice(r.CellUsage, func(i, j int) bool {
		if r.CellUsage[i].Count != r.CellUsage[j].Count {
			return r.CellUsage[i].Count > r.CellUsage[j].Count
		}
		return r.CellUsage[i].CellName < r.CellUsage[j].CellName
	})
	if topCells > 0 && len(r.CellUsage) > topCells {
		r.CellUsage = r.CellUsage[:topCells]
	}

	first := true
	for _, net := range ds.IDToNet {
		r.Nets++
		fanout := len(net.Connections)
		r.Connections += fanout
		if fanout == 2 {
			r.TwoPointNets++
		}
		if first {
			r.FanoutMin, r.FanoutMax = fanout, fanout
			first = false
			continue
		}
		if fanout < r.FanoutMin {
			r.FanoutMin = fanout
		}
		if fanout > r.FanoutMax {
			r.FanoutMax = fanout
		}
	}
	if r.Nets > 0 {
		r.FanoutMean = float64(r.Connections) / float64(r.Nets)
	}

	return r
}
