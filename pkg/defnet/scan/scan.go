// Package scan provides the line-level block extractors that split a DEF
// file into raw per-keyword sections. The extractors know where a statement
// or block terminates; they do not interpret the content, which is left to
// the transform package.
package scan

import (
	"bufio"
	"io"
	"strings"
)

// RawSection is one raw entry of a keyword block. Head is the entry's
// statement text (continuation lines already joined for multi-line blocks,
// terminator stripped). RawLines preserves the original lines of multi-line
// entries for diagnostics and is never used in parse decisions.
type RawSection struct {
	Head          string
	PropertyLines []string
	RawLines      []string
}

// Stream is a line-oriented reader shared between the orchestrator and the
// block extractors. It tracks consumed bytes so callers can report progress.
type Stream struct {
	r        *bufio.Reader
	consumed int64
}

// NewStream wraps r in a line stream.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its trailing newline. ok is false
// once the input is exhausted. err is non-nil only for real read failures.
func (s *Stream) ReadLine() (line string, ok bool, err error) {
	raw, err := s.r.ReadString('\n')
	s.consumed += int64(len(raw))
	if err == io.EOF {
		if raw == "" {
			return "", false, nil
		}
		return strings.TrimRight(raw, "\r\n"), true, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimRight(raw, "\r\n"), true, nil
}

// Consumed reports the total bytes read from the underlying reader so far.
func (s *Stream) Consumed() int64 {
	return s.consumed
}

// HeaderStatement extracts one single-line header statement such as
// "VERSION 5.8 ;". Header statements never continue onto the next line.
func HeaderStatement(_ *Stream, firstLine, _ string) string {
	return strings.TrimRight(firstLine, "\r\n")
}

// Statement extracts one self-terminating statement (DIEAREA, ROW, TRACKS,
// GCELLGRID). The statement may span lines; reading continues until the
// terminator is seen.
func Statement(s *Stream, firstLine, _ string) (string, error) {
	line := strings.TrimRight(firstLine, "\r\n")
	if strings.Contains(line, ";") {
		return line, nil
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(line, " \t"))
	for {
		next, ok, err := s.ReadLine()
		if err != nil {
			return b.String(), err
		}
		if !ok {
			return b.String(), nil
		}
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(next))
		if strings.Contains(next, ";") {
			return b.String(), nil
		}
	}
}

// Block extracts the entries of a terminated keyword block, consuming input
// up to and including the "END <prefix>" marker. Every non-empty line is one
// entry. An unterminated block yields the entries read so far.
func Block(s *Stream, _ string, prefix string) ([]RawSection, error) {
	end := "END " + prefix
	var sections []RawSection
	for {
		line, ok, err := s.ReadLine()
		if err != nil {
			return sections, err
		}
		if !ok {
			return sections, nil
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, end) {
			return sections, nil
		}
		sections = append(sections, RawSection{Head: trimmed})
	}
}

// MultiLineBlock extracts a terminated block whose entries may span several
// lines (COMPONENTS, NETS). Entries are split on a leading "-" at statement
// start; continuation lines are joined into a single head text with the
// terminator stripped, and the original lines are kept in RawLines.
func MultiLineBlock(s *Stream, _ string, prefix string) ([]RawSection, error) {
	end := "END " + prefix
	var sections []RawSection
	var cur *RawSection
	var parts []string

	flush := func() {
		if cur == nil {
			return
		}
		head := strings.TrimSpace(strings.Join(parts, " "))
		if strings.HasSuffix(head, ";") {
			head = strings.TrimSpace(strings.TrimSuffix(head, ";"))
		}
		cur.Head = head
		sections = append(sections, *cur)
		cur = nil
		parts = nil
	}

	for {
		line, ok, err := s.ReadLine()
		if err != nil {
			flush()
			return sections, err
		}
		if !ok {
			flush()
			return sections, nil
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, end) {
			flush()
			return sections, nil
		}
		if strings.HasPrefix(trimmed, "-") {
			flush()
			cur = &RawSection{}
		}
		if cur == nil {
			// Content before the first "-" entry carries no record of its
			// own; skip it.
			continue
		}
		cur.RawLines = append(cur.RawLines, line)
		parts = append(parts, trimmed)
	}
}
