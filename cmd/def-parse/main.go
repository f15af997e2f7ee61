package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/cellgrid/defnet/pkg/defnet"
	"github.com/cellgrid/defnet/pkg/defnet/config"
	"github.com/cellgrid/defnet/pkg/defnet/store/sqlite"
)

func main() {
	var (
		defPath  = flag.String("def", "", "Path to the DEF file (required)")
		dbPath   = flag.String("db", "", "SQLite database to persist the dataset (optional)")
		cfgPath  = flag.String("config", "", "Parser config file (optional)")
		withNets = flag.Bool("nets", false, "Also parse the NETS section")
		workers  = flag.Int("workers", 0, "Block transform workers (0 = serial)")
		quiet    = flag.Bool("quiet", false, "Suppress progress output")
		debug    = flag.Bool("debug", false, "Enable debug output")
	)
	flag.Parse()

	if *defPath == "" {
		log.Fatal("--def required")
	}

	info, err := os.Stat(*defPath)
	if err != nil {
		log.Fatal("stat DEF file:", err)
	}

	reporter := newProgressReporter(info.Size(), *quiet, *debug)

	loader := config.Loader{
		ConfigPath:  *cfgPath,
		Reporter:    reporter,
		IncludeNets: *withNets,
		Workers:     *workers,
	}
	parser, err := loader.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	log.Printf("Parsing %s", *defPath)
	start := time.Now()
	ds, err := parser.ParseFile(ctx, *defPath)
	if err != nil {
		log.Fatal(err)
	}
	reporter.finish()
	log.Printf("Finished parsing in %.1fs", time.Since(start).Seconds())

	printSummary(ds)

	if *dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.Fatal("open store:", err)
		}
		defer st.Close()

		if err := st.SaveDataset(ctx, ds); err != nil {
			log.Fatal("save dataset:", err)
		}
		log.Printf("Saved run %s to %s", ds.ID, *dbPath)
	}
}

func printSummary(ds *defnet.Dataset) {
	placed := 0
	for _, info := range ds.IDToInstance {
		if info.Placement != nil {
			placed++
		}
	}

	fmt.Println("=== DEF Header ===")
	if ds.Header.Design != "" {
		fmt.Println("design:", ds.Header.Design)
	}
	if ds.Header.Version != "" {
		fmt.Println("version:", ds.Header.Version)
	}
	if ds.Header.Technology != "" {
		fmt.Println("technology:", ds.Header.Technology)
	}
	fmt.Printf("units: %d database units per micron", ds.Header.Units.DatabaseUnitsPerMicron)
	if ds.Header.Units.DefaultUsed {
		fmt.Print(" (default)")
	}
	fmt.Println()

	fmt.Println("=== Summary ===")
	fmt.Printf("run id:     %s\n", ds.ID)
	fmt.Printf("components: %d (%d placed, %d unplaced)\n",
		len(ds.IDToInstance), placed, len(ds.IDToInstance)-placed)
	fmt.Printf("nets:       %d (after dangling-net pruning)\n", len(ds.IDToNet))
}

// progressReporter feeds parse progress into a terminal progress bar and
// routes diagnostics to the standard logger. Formatter warnings can arrive
// from concurrent workers, so every method locks.
type progressReporter struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	quiet bool
	debug bool
}

func newProgressReporter(total int64, quiet, debug bool) *progressReporter {
	r := &progressReporter{quiet: quiet, debug: debug}
	if !quiet {
		r.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription("Parsing DEF file"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}
	return r
}

func (r *progressReporter) Progress(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Add64(n)
	}
}

func (r *progressReporter) Warnf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.Printf("warning: "+format, args...)
}

func (r *progressReporter) Debugf(format string, args ...any) {
	if !r.debug {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	log.Printf("debug: "+format, args...)
}

func (r *progressReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Finish()
	}
}
