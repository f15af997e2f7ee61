package transform

import (
	"strconv"
	"strings"
)

// FeatureKind tags the two shapes a feature value can take.
type FeatureKind int

const (
	// FeatureScalar is a feature with exactly one value token.
	FeatureScalar FeatureKind = iota
	// FeatureMulti is a feature with zero or several value tokens.
	FeatureMulti
)

// FeatureValue is the value of one "+ NAME" feature run. Exactly one token
// after the keyword yields a Scalar; zero or several yield a Multi. The
// distinction is part of the output contract: consumers must branch on Kind
// rather than shape-testing, and a single value is never wrapped in a
// one-element Multi.
type FeatureValue struct {
	Kind   FeatureKind
	Value  string   // set when Kind == FeatureScalar
	Values []string // set when Kind == FeatureMulti
}

// ScalarValue builds a single-token feature value.
func ScalarValue(v string) FeatureValue {
	return FeatureValue{Kind: FeatureScalar, Value: v}
}

// MultiValue builds a multi-token feature value.
func MultiValue(vs []string) FeatureValue {
	return FeatureValue{Kind: FeatureMulti, Values: vs}
}

// Placement is a component's location and orientation. When the coordinate
// text is not integral, RawX/RawY carry the original strings and X/Y are
// zero.
type Placement struct {
	X           int
	Y           int
	RawX        string
	RawY        string
	Orientation string
}

// Numeric reports whether the coordinates parsed as integers.
func (p *Placement) Numeric() bool {
	return p.RawX == "" && p.RawY == ""
}

// ComponentRecord is one formatted COMPONENTS entry. Placement is nil when
// no placement could be extracted; absence means "no placement", never a
// synthetic zero position.
type ComponentRecord struct {
	InstanceName string
	CellName     string
	Features     map[string]FeatureValue
	Placement    *Placement
	RawLines     []string
}

func (c *ComponentRecord) setRawLines(lines []string) { c.RawLines = lines }

// placementKeywords in priority order; the first one present wins.
var placementKeywords = [...]string{"PLACED", "FIXED", "COVER"}

// ComponentFormatter formats COMPONENTS entries of the shape
//
//	- instName cellName + PLACED ( x y ) N + FEATURE v1 v2 ...
//
// Entries with fewer than three tokens degrade to a sentinel UNKNOWN record
// and a warning; the formatter never fails.
type ComponentFormatter struct {
	warner Warner
}

// NewComponentFormatter creates a component formatter reporting through w.
// A nil w discards warnings.
func NewComponentFormatter(w Warner) *ComponentFormatter {
	if w == nil {
		w = nopWarner{}
	}
	return &ComponentFormatter{warner: w}
}

// Format implements Formatter.
func (f *ComponentFormatter) Format(tokens []string) *ComponentRecord {
	if len(tokens) < 3 {
		f.warner.Warnf("invalid component entry: %v", tokens)
		return &ComponentRecord{
			InstanceName: "UNKNOWN",
			CellName:     "UNKNOWN",
			Features:     map[string]FeatureValue{},
		}
	}

	rec := &ComponentRecord{
		InstanceName: tokens[1],
		CellName:     tokens[2],
		Features:     make(map[string]FeatureValue),
	}

	i := 3
	for i < len(tokens) {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "+ ") {
			i++
			continue
		}
		name := tok[2:]
		var values []string
		i++
		for i < len(tokens) && !strings.HasPrefix(tokens[i], "+ ") {
			values = append(values, tokens[i])
			i++
		}
		if len(values) == 1 {
			rec.Features[name] = ScalarValue(values[0])
		} else {
			rec.Features[name] = MultiValue(values)
		}
	}

	rec.Placement = f.extractPlacement(rec.Features)
	return rec
}

func (f *ComponentFormatter) extractPlacement(features map[string]FeatureValue) *Placement {
	for _, kw := range placementKeywords {
		fv, ok := features[kw]
		if !ok {
			continue
		}
		switch fv.Kind {
		case FeatureScalar:
			// A bare coordinate group; orientation defaults to north.
			if !strings.HasPrefix(fv.Value, "(") {
				return nil
			}
			return f.parseCoords(fv.Value, "N")
		case FeatureMulti:
			if len(fv.Values) < 2 {
				return nil
			}
			return f.parseCoords(fv.Values[0], fv.Values[1])
		}
	}
	return nil
}

// parseCoords turns "( x y )" text into a Placement. Non-integer
// coordinates keep their raw strings rather than dropping the placement.
func (f *ComponentFormatter) parseCoords(group, orientation string) *Placement {
	parts := strings.Fields(strings.Trim(group, "() "))
	if len(parts) < 2 {
		return nil
	}
	x, errX := strconv.Atoi(parts[0])
	y, errY := strconv.Atoi(parts[1])
	if errX != nil || errY != nil {
		f.warner.Warnf("non-integer placement coordinates in %q", group)
		return &Placement{RawX: parts[0], RawY: parts[1], Orientation: orientation}
	}
	return &Placement{X: x, Y: y, Orientation: orientation}
}
