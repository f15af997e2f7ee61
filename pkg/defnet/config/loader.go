package config

import (
	"fmt"

	"github.com/cellgrid/defnet/pkg/defnet"
)

// Loader assembles a Parser from an optional config file plus call-site
// overrides.
type Loader struct {
	// ConfigPath is the YAML config file; empty means defaults only.
	ConfigPath string
	// Reporter observes the parse; nil means no reporting.
	Reporter defnet.Reporter
	// IncludeNets adds the NETS block to the required sections.
	IncludeNets bool
	// Workers overrides the configured worker count when positive.
	Workers int
	// KeepRawLines overrides the configured raw-line retention when set.
	KeepRawLines bool
}

// Load builds the parser.
func (l *Loader) Load() (*defnet.Parser, error) {
	opts := defnet.Options{Reporter: l.Reporter}

	if l.ConfigPath != "" {
		f, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load parser config: %w", err)
		}
		opts.Keywords = f.Keywords()
		opts.Required = f.Required
		opts.Workers = f.Workers
		opts.SimpleNets = f.SimpleNets
		opts.KeepRawLines = f.KeepRawLines
	}

	if l.IncludeNets && !contains(opts.Required, defnet.SectionNets) {
		if len(opts.Required) == 0 {
			opts.Required = []string{defnet.SectionComponents}
		}
		opts.Required = append(opts.Required, defnet.SectionNets)
	}
	if l.Workers > 0 {
		opts.Workers = l.Workers
	}
	if l.KeepRawLines {
		opts.KeepRawLines = true
	}

	return defnet.New(opts), nil
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
