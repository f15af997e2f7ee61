// Package defnet parses DEF (Design Exchange Format) netlists into
// id-indexed datasets of component placements and net connectivity.
//
// The parser makes a single pass over the file, classifies each logical
// line by its leading keyword, delegates raw block extraction to the scan
// package and record formatting to the transform package, then assembles
// the final dataset: name→id maps, per-id instance and net info, extracted
// header attributes and dangling-net pruning. Malformed entries degrade to
// sentinel records plus warnings; the whole-file parse never aborts on
// content.
package defnet

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cellgrid/defnet/pkg/defnet/scan"
	"github.com/cellgrid/defnet/pkg/defnet/transform"
)

const (
	// DefaultUnitsPerMicron applies when a DEF file carries no usable
	// UNITS statement.
	DefaultUnitsPerMicron = 1000

	// externalPinMarker is the pseudo-instance naming external pins in
	// NETS connections.
	externalPinMarker = "PIN"

	// SectionComponents and SectionNets are the keyword blocks the parser
	// can transform into records.
	SectionComponents = "COMPONENTS"
	SectionNets       = "NETS"
)

// Fixed header-field patterns, case-sensitive, first capture group.
var (
	versionRe    = regexp.MustCompile(`VERSION\s+([\d.]+)`)
	designRe     = regexp.MustCompile(`DESIGN\s+(\S+)`)
	technologyRe = regexp.MustCompile(`TECHNOLOGY\s+(\S+)`)
	unitsRe      = regexp.MustCompile(`UNITS\s+DISTANCE\s+MICRONS\s+(\d+)`)
	dividerRe    = regexp.MustCompile(`DIVIDERCHAR\s+"(.)"`)
	busBitRe     = regexp.MustCompile(`BUSBITCHARS\s+"(..)"`)
)

// Options configures a Parser. The zero value parses COMPONENTS only, with
// the default keyword sets, one transform worker and no reporting.
type Options struct {
	// Keywords classifies top-level prefixes; zero value means
	// DefaultKeywords().
	Keywords Keywords
	// Required names the keyword blocks to transform into records.
	// Defaults to COMPONENTS only; add NETS for connectivity.
	Required []string
	// Reporter observes progress and diagnostics; nil means NopReporter.
	Reporter Reporter
	// Workers bounds the block-transform pool; values below 1 mean serial.
	Workers int
	// KeepRawLines attaches the original entry lines to each record.
	KeepRawLines bool
	// SimpleNets selects the single-line NETS formatter for files without
	// multi-line NET entries.
	SimpleNets bool
}

// Parser is the file orchestrator.
type Parser struct {
	keywords   Keywords
	required   []string
	reporter   Reporter
	workers    int
	keepRaw    bool
	simpleNets bool
	entropy    *ulid.MonotonicEntropy
}

// New creates a Parser with the given options.
func New(opts Options) *Parser {
	kw := opts.Keywords
	if kw.empty() {
		kw = DefaultKeywords()
	}
	required := opts.Required
	if len(required) == 0 {
		required = []string{SectionComponents}
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NopReporter()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Parser{
		keywords:   kw,
		required:   required,
		reporter:   reporter,
		workers:    workers,
		keepRaw:    opts.KeepRawLines,
		simpleNets: opts.SimpleNets,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// ParseFile opens and parses the DEF file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open def file: %w", err)
	}
	defer f.Close()
	return p.Parse(ctx, f)
}

// Parse reads one DEF file and assembles the id-indexed dataset. The scan
// is a single uninterrupted pass; ctx is accepted for call-site symmetry
// but cancellation is not observed mid-parse. Only stream-level read
// failures return an error; malformed content degrades to sentinel records
// and warnings.
func (p *Parser) Parse(_ context.Context, r io.Reader) (*Dataset, error) {
	stream := scan.NewStream(r)

	headers := make(map[string]string)
	statements := make(map[string][]string)
	blocks := make(map[string][]scan.RawSection)

	var reported int64
	flushProgress := func() {
		if delta := stream.Consumed() - reported; delta > 0 {
			p.reporter.Progress(delta)
			reported = stream.Consumed()
		}
	}

	for {
		line, ok, err := stream.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("read def stream: %w", err)
		}
		if !ok {
			break
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		prefix := fields[0]
		if strings.HasPrefix(prefix, "#") {
			continue
		}

		switch {
		case has(p.keywords.Header, prefix):
			headers[prefix] = scan.HeaderStatement(stream, line, prefix)

		case has(p.keywords.NoTerminator, prefix):
			stmt, err := scan.Statement(stream, line, prefix)
			if err != nil {
				return nil, fmt.Errorf("read %s statement: %w", prefix, err)
			}
			statements[prefix] = append(statements[prefix], stmt)

		case has(p.keywords.Terminated, prefix):
			var secs []scan.RawSection
			if has(p.keywords.MultiLine, prefix) {
				secs, err = scan.MultiLineBlock(stream, line, prefix)
			} else {
				secs, err = scan.Block(stream, line, prefix)
			}
			if err != nil {
				return nil, fmt.Errorf("read %s block: %w", prefix, err)
			}
			blocks[prefix] = secs

		default:
			p.reporter.Debugf("unknown prefix: %s", prefix)
		}

		flushProgress()
	}
	flushProgress()

	p.reporter.Debugf("found sections: headers=%v statements=%v blocks=%v",
		sortedKeys(headers), sortedSliceKeys(statements), sortedSectionKeys(blocks))

	ds := newDataset(p.newID(), p.extractHeader(headers))

	for _, prefix := range p.required {
		secs, found := blocks[prefix]
		if !found {
			p.reporter.Warnf("%s section not found in DEF file", prefix)
		}
		switch prefix {
		case SectionComponents:
			comps := transform.NewComponentBlock(p.reporter, p.workers, p.keepRaw).Transform(secs)
			assembleComponents(ds, comps)
		case SectionNets:
			nets := p.netBlock().Transform(secs)
			assembleNets(ds, nets)
		default:
			p.reporter.Debugf("no transformer for required section %s", prefix)
		}
	}

	return ds, nil
}

func (p *Parser) netBlock() *transform.BlockTransformer[*transform.NetRecord] {
	if p.simpleNets {
		return transform.NewSimpleNetBlock(p.reporter, p.workers)
	}
	return transform.NewNetBlock(p.reporter, p.workers, p.keepRaw)
}

func (p *Parser) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), p.entropy).String()
}

// extractHeader pulls the fixed header attributes out of the accumulated
// header statements. UNITS absent and UNITS unparsable both fall back to
// the default scale; only the warning differs.
func (p *Parser) extractHeader(lines map[string]string) HeaderInfo {
	h := HeaderInfo{
		Units: Units{
			Distance:               "MICRONS",
			DatabaseUnitsPerMicron: DefaultUnitsPerMicron,
			DefaultUsed:            true,
		},
	}

	if line, ok := lines["VERSION"]; ok {
		if m := versionRe.FindStringSubmatch(line); m != nil {
			h.Version = m[1]
		}
	}
	if line, ok := lines["DESIGN"]; ok {
		if m := designRe.FindStringSubmatch(line); m != nil {
			h.Design = m[1]
		}
	}
	if line, ok := lines["TECHNOLOGY"]; ok {
		if m := technologyRe.FindStringSubmatch(line); m != nil {
			h.Technology = m[1]
		}
	}

	if line, ok := lines["UNITS"]; ok {
		if m := unitsRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				h.Units = Units{Distance: "MICRONS", DatabaseUnitsPerMicron: v}
			} else {
				p.reporter.Warnf("failed to parse UNITS DISTANCE MICRONS value in %q", line)
			}
		} else {
			p.reporter.Warnf("failed to parse UNITS DISTANCE MICRONS value in %q", line)
		}
	} else {
		p.reporter.Warnf("no UNITS in DEF file, using default (%d)", DefaultUnitsPerMicron)
	}

	if line, ok := lines["DIVIDERCHAR"]; ok {
		if m := dividerRe.FindStringSubmatch(line); m != nil {
			h.DividerChar = m[1]
		}
	}
	if line, ok := lines["BUSBITCHARS"]; ok {
		if m := busBitRe.FindStringSubmatch(line); m != nil {
			h.BusBitChars = m[1]
		}
	}

	return h
}

// assembleComponents enumerates component records in file order. The name
// map is last-wins on duplicates; the id map keeps every occurrence.
func assembleComponents(ds *Dataset, comps []*transform.ComponentRecord) {
	for i, c := range comps {
		ds.InstanceToID[c.InstanceName] = i
		ds.IDToInstance[i] = InstanceInfo{
			InstanceName: c.InstanceName,
			CellName:     c.CellName,
			Placement:    c.Placement,
		}
	}
}

// assembleNets enumerates net records, filters external-pin connections out
// of the per-id info, then prunes dangling nets. The prune decision uses
// the unfiltered connection count; a net whose only extra connection is the
// PIN marker survives with a single filtered connection. The key list is
// materialized once and deletions touch only IDToNet.
func assembleNets(ds *Dataset, nets []*transform.NetRecord) {
	unfiltered := make(map[int]int, len(nets))
	for i, n := range nets {
		ds.NetToID[n.NetName] = i
		unfiltered[i] = len(n.Connections)

		conns := make([]transform.Connection, 0, len(n.Connections))
		for _, conn := range n.Connections {
			if conn.InstanceName == externalPinMarker {
				continue
			}
			conns = append(conns, conn)
		}
		ds.IDToNet[i] = NetInfo{NetName: n.NetName, Connections: conns}
	}

	ids := make([]int, 0, len(ds.IDToNet))
	for id := range ds.IDToNet {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if unfiltered[id] == 1 {
			delete(ds.IDToNet, id)
		}
	}
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSliceKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSectionKeys(m map[string][]scan.RawSection) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
