package output

import (
	"github.com/snipkit/clipctx/internal/cache"
	"github.com/snipkit/clipctx/internal/extract"
	"github.com/snipkit/clipctx/internal/treecache"
)

// Range is a 1-based line/column range as given on the command line.
type Range struct {
	StartLine   int `yaml:"start_line" json:"start_line"`
	StartColumn int `yaml:"start_column" json:"start_column"`
	EndLine     int `yaml:"end_line,omitempty" json:"end_line,omitempty"`
	EndColumn   int `yaml:"end_column,omitempty" json:"end_column,omitempty"`
}

// ContextOutput is the result of clipctx context.
type ContextOutput struct {
	// File is the path as given by the caller.
	File string `yaml:"file" json:"file"`

	// Language is the language identifier used for dispatch. Empty when the
	// file extension is not recognized.
	Language string `yaml:"language,omitempty" json:"language,omitempty"`

	Range Range `yaml:"range" json:"range"`

	// Context is the structural context at the range.
	Context extract.Info `yaml:"context" json:"context"`
}

// StatsOutput is the result of clipctx cache stats.
type StatsOutput struct {
	Store *cache.Stats `yaml:"store" json:"store"`

	// Trees is only present for long-lived processes that share a tree cache.
	Trees *treecache.Stats `yaml:"trees,omitempty" json:"trees,omitempty"`
}

// PruneOutput is the result of clipctx cache prune.
type PruneOutput struct {
	Pruned    int `yaml:"pruned" json:"pruned"`
	Remaining int `yaml:"remaining" json:"remaining"`
}
