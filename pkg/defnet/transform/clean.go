package transform

import "strings"

// Cleaner normalizes one logical line before tokenization.
type Cleaner interface {
	Clean(line string) string
}

// TerminatorCleaner trims surrounding whitespace and strips one trailing
// statement terminator (";"). Used for single-line sources where the
// terminator is still attached.
type TerminatorCleaner struct{}

// Clean implements Cleaner.
func (TerminatorCleaner) Clean(line string) string {
	cleaned := strings.TrimSpace(line)
	if strings.HasSuffix(cleaned, ";") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, ";"))
	}
	return cleaned
}

// TrimCleaner only trims whitespace. Multi-line entries arrive already
// joined and terminator-stripped by the block extractor.
type TrimCleaner struct{}

// Clean implements Cleaner.
func (TrimCleaner) Clean(line string) string {
	return strings.TrimSpace(line)
}
