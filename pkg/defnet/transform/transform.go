// Package transform implements the tokenization-and-formatting pipeline
// that turns raw DEF sections into structured records: line cleaning,
// statement tokenization, record formatting and the section/block
// transformers that compose them.
package transform

import (
	"sync"

	"github.com/cellgrid/defnet/pkg/defnet/scan"
)

// Warner receives non-fatal diagnostics from formatters. Implementations
// must be safe for concurrent use when block transformation runs with more
// than one worker, and must never influence results.
type Warner interface {
	Warnf(format string, args ...any)
}

type nopWarner struct{}

func (nopWarner) Warnf(string, ...any) {}

// Record is the common surface of formatter outputs.
type Record interface {
	setRawLines(lines []string)
}

// Formatter turns one token sequence into a structured record. The concrete
// formatter is chosen once per keyword block at construction time.
type Formatter[R Record] interface {
	Format(tokens []string) R
}

// SectionTransformer runs Clean → Split → Format over one raw section.
type SectionTransformer[R Record] struct {
	cleaner   Cleaner
	tokenizer *Tokenizer
	formatter Formatter[R]
	keepRaw   bool
}

// NewSectionTransformer composes a cleaner, tokenizer and formatter. With
// keepRaw set, the section's original lines are attached to the record for
// diagnostics.
func NewSectionTransformer[R Record](c Cleaner, t *Tokenizer, f Formatter[R], keepRaw bool) *SectionTransformer[R] {
	return &SectionTransformer[R]{cleaner: c, tokenizer: t, formatter: f, keepRaw: keepRaw}
}

// Transform formats one raw section.
func (s *SectionTransformer[R]) Transform(sec scan.RawSection) R {
	cleaned := s.cleaner.Clean(sec.Head)
	tokens := s.tokenizer.Split(cleaned)
	rec := s.formatter.Format(tokens)
	if s.keepRaw && len(sec.RawLines) > 0 {
		rec.setRawLines(sec.RawLines)
	}
	return rec
}

// BlockTransformer applies a SectionTransformer to every section of one
// keyword block. Sections share no mutable state, so with workers > 1 they
// are processed by a bounded pool; results land at their input index, so
// output order always matches input order.
type BlockTransformer[R Record] struct {
	section *SectionTransformer[R]
	workers int
}

// NewBlockTransformer wraps a section transformer. workers < 1 is treated
// as 1.
func NewBlockTransformer[R Record](section *SectionTransformer[R], workers int) *BlockTransformer[R] {
	if workers < 1 {
		workers = 1
	}
	return &BlockTransformer[R]{section: section, workers: workers}
}

// Transform formats all sections of a block, preserving input order.
func (b *BlockTransformer[R]) Transform(sections []scan.RawSection) []R {
	out := make([]R, len(sections))
	if b.workers == 1 || len(sections) <= 1 {
		for i := range sections {
			out[i] = b.section.Transform(sections[i])
		}
		return out
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.workers)
	for i := range sections {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = b.section.Transform(sections[i])
		}(i)
	}
	wg.Wait()
	return out
}

// NewComponentBlock returns the transformer used for COMPONENTS blocks.
// Multi-line entries arrive pre-joined, so the pass-through cleaner is
// used.
func NewComponentBlock(w Warner, workers int, keepRaw bool) *BlockTransformer[*ComponentRecord] {
	sec := NewSectionTransformer[*ComponentRecord](TrimCleaner{}, NewTokenizer(), NewComponentFormatter(w), keepRaw)
	return NewBlockTransformer(sec, workers)
}

// NewNetBlock returns the multi-line-aware transformer used for NETS
// blocks.
func NewNetBlock(w Warner, workers int, keepRaw bool) *BlockTransformer[*NetRecord] {
	sec := NewSectionTransformer[*NetRecord](TrimCleaner{}, NewTokenizer(), NewNetFormatter(w), keepRaw)
	return NewBlockTransformer(sec, workers)
}

// NewSimpleNetBlock returns the single-line NETS transformer. Its sections
// still carry the statement terminator, so the terminator cleaner is used.
func NewSimpleNetBlock(w Warner, workers int) *BlockTransformer[*NetRecord] {
	sec := NewSectionTransformer[*NetRecord](TerminatorCleaner{}, NewTokenizer(), NewSimpleNetFormatter(w), false)
	return NewBlockTransformer(sec, workers)
}
