package defnet

// Keywords classifies the top-level DEF keywords by statement shape: bare
// header statements, self-terminating statements without an end marker, and
// blocks consumed up to a matching "END <keyword>". MultiLine names the
// terminated blocks whose entries may continue across lines.
type Keywords struct {
	Header       map[string]struct{}
	NoTerminator map[string]struct{}
	Terminated   map[string]struct{}
	MultiLine    map[string]struct{}
}

// DefaultKeywords returns the keyword classification of DEF 5.8 as used by
// placement/connectivity netlists.
func DefaultKeywords() Keywords {
	return Keywords{
		Header: set(
			"VERSION",
			"NAMESCASESENSITIVE",
			"DIVIDERCHAR",
			"BUSBITCHARS",
			"DESIGN",
			"TECHNOLOGY",
			"UNITS",
		),
		NoTerminator: set(
			"DIEAREA",
			"ROW",
			"TRACKS",
			"GCELLGRID",
		),
		Terminated: set(
			"PROPERTYDEFINITIONS",
			"VIAS",
			"STYLES",
			"NONDEFAULTRULES",
			"REGIONS",
			"COMPONENTS",
			"PINS",
			"PINPROPERTIES",
			"BLOCKAGES",
			"SPECIALNETS",
			"NETS",
			"SCANCHAINS",
			"GROUPS",
			"SLOTS",
			"FILLS",
			"BEGINEXT",
		),
		MultiLine: set(
			"COMPONENTS",
			"NETS",
		),
	}
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func (k Keywords) empty() bool {
	return len(k.Header) == 0 && len(k.NoTerminator) == 0 && len(k.Terminated) == 0
}
