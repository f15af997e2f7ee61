package transform

import "strings"

// Connection is one ( instance pin ) pair of a net.
type Connection struct {
	InstanceName string
	PinName      string
}

// NetProperty is one "+ NAME [value]" run of a net entry.
type NetProperty struct {
	Name     string
	Value    string
	HasValue bool
}

// NetRecord is one formatted NETS entry.
type NetRecord struct {
	NetName     string
	Connections []Connection
	Properties  []NetProperty
	RawLines    []string
}

func (n *NetRecord) setRawLines(lines []string) { n.RawLines = lines }

// NetFormatter formats multi-line NETS entries of the shape
//
//	- netName ( inst1 pinA ) ( inst2 pinB ) + USE SIGNAL + WEIGHT 2
//
// Parenthesized groups before the first "+ NAME" token are connections.
// The first "+ NAME" token switches the entry into property mode for good:
// a group appearing after that point is never treated as a connection, even
// when well-formed.
type NetFormatter struct {
	warner Warner
}

// NewNetFormatter creates a multi-line-aware net formatter reporting
// through w. A nil w discards warnings.
func NewNetFormatter(w Warner) *NetFormatter {
	if w == nil {
		w = nopWarner{}
	}
	return &NetFormatter{warner: w}
}

// Format implements Formatter.
func (f *NetFormatter) Format(tokens []string) *NetRecord {
	if len(tokens) < 2 {
		f.warner.Warnf("invalid net entry: %v", tokens)
		return &NetRecord{NetName: "UNKNOWN"}
	}

	rec := &NetRecord{NetName: tokens[1]}
	propertyStart := false

	i := 2
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case !propertyStart && strings.HasPrefix(tok, "(") && strings.HasSuffix(tok, ")"):
			if conn, ok := splitConnection(tok); ok {
				rec.Connections = append(rec.Connections, conn)
			} else {
				f.warner.Warnf("malformed connection %q in net %s", tok, rec.NetName)
			}
			i++

		case strings.HasPrefix(tok, "+ "):
			propertyStart = true
			prop := NetProperty{Name: tok[2:]}
			// The property value is the next token only when that token is
			// neither another keyword marker nor a group.
			if i+1 < len(tokens) &&
				!strings.HasPrefix(tokens[i+1], "+") &&
				!strings.HasPrefix(tokens[i+1], "(") {
				prop.Value = tokens[i+1]
				prop.HasValue = true
				i += 2
			} else {
				i++
			}
			rec.Properties = append(rec.Properties, prop)

		default:
			i++
		}
	}

	return rec
}

// SimpleNetFormatter formats single-line NETS entries. Every parenthesized
// token is treated as a connection regardless of position; properties are
// ignored. Suitable only for files without multi-line NET entries.
type SimpleNetFormatter struct {
	warner Warner
}

// NewSimpleNetFormatter creates the single-line net formatter.
func NewSimpleNetFormatter(w Warner) *SimpleNetFormatter {
	if w == nil {
		w = nopWarner{}
	}
	return &SimpleNetFormatter{warner: w}
}

// Format implements Formatter.
func (f *SimpleNetFormatter) Format(tokens []string) *NetRecord {
	if len(tokens) < 2 {
		f.warner.Warnf("invalid net entry: %v", tokens)
		return &NetRecord{NetName: "UNKNOWN"}
	}

	rec := &NetRecord{NetName: tokens[1]}
	for _, tok := range tokens[2:] {
		if !strings.HasPrefix(tok, "(") || !strings.HasSuffix(tok, ")") {
			continue
		}
		if conn, ok := splitConnection(tok); ok {
			rec.Connections = append(rec.Connections, conn)
		} else {
			f.warner.Warnf("malformed connection %q in net %s", tok, rec.NetName)
		}
	}
	return rec
}

// splitConnection strips the parentheses from "( inst pin )" and returns
// the first two words.
func splitConnection(group string) (Connection, bool) {
	parts := strings.Fields(strings.Trim(group, "() "))
	if len(parts) < 2 {
		return Connection{}, false
	}
	return Connection{InstanceName: parts[0], PinName: parts[1]}, true
}
