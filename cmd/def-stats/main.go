package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/cellgrid/defnet/pkg/defnet"
	"github.com/cellgrid/defnet/pkg/defnet/analytics"
	"github.com/cellgrid/defnet/pkg/defnet/internalerr"
	"github.com/cellgrid/defnet/pkg/defnet/store/sqlite"
)

func main() {
	var (
		dbPath = flag.String("db", "", "SQLite database path (required)")
		runID  = flag.String("run", "", "Run id to report on")
		design = flag.String("design", "", "Design name (latest run)")
		top    = flag.Int("top", 10, "Number of cell types to list")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatal("open store:", err)
	}
	defer st.Close()

	// Without a run or design, list what the store holds.
	if *runID == "" && *design == "" {
		runs, err := st.ListRuns(ctx, 20)
		if err != nil {
			log.Fatal(err)
		}
		if len(runs) == 0 {
			fmt.Println("no stored runs")
			return
		}
		fmt.Println("Stored runs (newest first):")
		for _, run := range runs {
			fmt.Printf("  %s  %-20s  %6d instances  %6d nets  %s\n",
				run.ID, run.Design, run.Instances, run.Nets,
				run.ParsedAt.Format("2006-01-02 15:04:05"))
		}
		return
	}

	var (
		ds    *defnet.Dataset
		found bool
	)
	if *runID != "" {
		ds, found, err = st.GetDataset(ctx, *runID)
	} else {
		ds, found, err = st.GetLatestByDesign(ctx, *design)
	}
	if err != nil {
		log.Fatal(err)
	}
	if !found {
		log.Fatalf("%v: no matching run in store", internalerr.ErrNotFound)
	}

	report := analytics.Analyze(ds, *top)
	printReport(report)
}

func printReport(r analytics.Report) {
	fmt.Printf("Design: %s\n\n", r.Design)

	fmt.Println("Components")
	fmt.Printf("  total:    %d\n", r.Components)
	fmt.Printf("  placed:   %d (%.1f%%)\n", r.Placed, r.PlacementCoverage*100)
	if len(r.CellUsage) > 0 {
		fmt.Println("  top cells:")
		for _, cc := range r.CellUsage {
			fmt.Printf("    %-24s %d\n", cc.CellName, cc.Count)
		}
	}

	fmt.Println("\nNets")
	fmt.Printf("  total:       %d\n", r.Nets)
	fmt.Printf("  connections: %d\n", r.Connections)
	if r.Nets > 0 {
		fmt.Printf("  two-point:   %d\n", r.TwoPointNets)
		fmt.Printf("  fanout:      min %d / mean %.2f / max %d\n",
			r.FanoutMin, r.FanoutMean, r.FanoutMax)
	}
}
