package defnet

import (
	"time"

	"github.com/cellgrid/defnet/pkg/defnet/transform"
)

// Units is the coordinate scale of a DEF file. DefaultUsed marks datasets
// where no usable UNITS statement was found and the 1000 fallback applies.
type Units struct {
	Distance               string
	DatabaseUnitsPerMicron int
	DefaultUsed            bool
}

// HeaderInfo carries the extracted header attributes. Absent attributes are
// empty strings; Units is always populated.
type HeaderInfo struct {
	Version     string
	Design      string
	Technology  string
	Units       Units
	DividerChar string
	BusBitChars string
}

// InstanceInfo is one placed (or unplaced) component instance.
type InstanceInfo struct {
	InstanceName string
	CellName     string
	Placement    *transform.Placement
}

// NetInfo is one surviving net with its external-pin connections already
// filtered out.
type NetInfo struct {
	NetName     string
	Connections []transform.Connection
}

// Dataset is the id-indexed result of one parse. InstanceToID and NetToID
// resolve a name to the id of its last occurrence in file order;
// IDToInstance and IDToNet keep one entry per enumerated occurrence, so
// duplicate names leave earlier ids reachable only by id. Dangling nets are
// pruned from IDToNet but their names remain in NetToID.
type Dataset struct {
	ID           string
	Header       HeaderInfo
	InstanceToID map[string]int
	IDToInstance map[int]InstanceInfo
	NetToID      map[string]int
	IDToNet      map[int]NetInfo
	ParsedAt     time.Time
}

// Design is a convenience accessor for the header design name.
func (d *Dataset) Design() string {
	return d.Header.Design
}

func newDataset(id string, header HeaderInfo) *Dataset {
	return &Dataset{
		ID:           id,
		Header:       header,
		InstanceToID: make(map[string]int),
		IDToInstance: make(map[int]InstanceInfo),
		NetToID:      make(map[string]int),
		IDToNet:      make(map[int]NetInfo),
		ParsedAt:     time.Now(),
	}
}
