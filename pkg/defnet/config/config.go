// Package config loads parser configuration from YAML and assembles ready
// Parser instances.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cellgrid/defnet/pkg/defnet"
	"github.com/cellgrid/defnet/pkg/defnet/internalerr"
)

// File is the YAML representation of the parser configuration. Empty
// keyword lists fall back to the DEF 5.8 defaults, so a config file only
// needs to name what it overrides.
type File struct {
	Header       []string `yaml:"header"`
	NoTerminator []string `yaml:"no_terminator"`
	Terminated   []string `yaml:"terminated"`
	MultiLine    []string `yaml:"multi_line"`
	Required     []string `yaml:"required"`
	Workers      int      `yaml:"workers"`
	SimpleNets   bool     `yaml:"simple_nets"`
	KeepRawLines bool     `yaml:"keep_raw_lines"`
}

// Load reads a parser configuration from a YAML file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	return &f, nil
}

// Keywords converts the configured lists into a keyword classification,
// defaulting each empty class.
func (f *File) Keywords() defnet.Keywords {
	kw := defnet.DefaultKeywords()
	if len(f.Header) > 0 {
		kw.Header = toSet(f.Header)
	}
	if len(f.NoTerminator) > 0 {
		kw.NoTerminator = toSet(f.NoTerminator)
	}
	if len(f.Terminated) > 0 {
		kw.Terminated = toSet(f.Terminated)
	}
	if len(f.MultiLine) > 0 {
		kw.MultiLine = toSet(f.MultiLine)
	}
	return kw
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
