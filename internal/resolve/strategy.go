package resolve

import (
	"context"

	"github.com/snipkit/clipctx/internal/extract"
	"github.com/snipkit/clipctx/internal/modpath"
	"github.com/snipkit/clipctx/internal/parser"
)

// Strategy bundles the parsing and extraction steps for one language.
// New languages plug in here without changes to callers.
type Strategy interface {
	Language() parser.Language
	// Initialize loads the grammar. Failures are permanent.
	Initialize(ctx context.Context) error
	Parse(ctx context.Context, source []byte) (*parser.ParseResult, error)
	Locate(result *parser.ParseResult, span Span) extract.Chain
	// Resolve names the chain. When the chain has no module declarations the
	// module comes from path.
	Resolve(chain extract.Chain, result *parser.ParseResult, path string) extract.Info
	// ModuleFromPath infers a module from path alone. It works even when the
	// grammar failed to load.
	ModuleFromPath(path string) string
}

// TreeSitterStrategy is the Strategy for every grammar-backed language.
type TreeSitterStrategy struct {
	parser  *parser.Parser
	profile extract.Profile
	rules   modpath.Rules
}

// NewTreeSitterStrategy builds a strategy for lang. rules may be the zero
// value for languages without a path convention.
func NewTreeSitterStrategy(lang parser.Language, rules modpath.Rules, opts ...parser.Option) (*TreeSitterStrategy, error) {
	p, err := parser.NewParser(lang, opts...)
	if err != nil {
		return nil, err
	}
	return &TreeSitterStrategy{
		parser:  p,
		profile: extract.ProfileFor(lang),
		rules:   rules,
	}, nil
}

func (s *TreeSitterStrategy) Language() parser.Language {
	return s.parser.Language()
}

func (s *TreeSitterStrategy) Initialize(ctx context.Context) error {
	return s.parser.Initialize(ctx)
}

func (s *TreeSitterStrategy) Parse(ctx context.Context, source []byte) (*parser.ParseResult, error) {
	return s.parser.Parse(ctx, source)
}

func (s *TreeSitterStrategy) Locate(result *parser.ParseResult, span Span) extract.Chain {
	return extract.Locate(result.Root, span.Start, span.End, s.parser.Classify)
}

func (s *TreeSitterStrategy) Resolve(chain extract.Chain, result *parser.ParseResult, path string) extract.Info {
	info := extract.Resolve(chain, result.Source, s.profile)
	if len(chain.Modules) == 0 {
		info = info.WithFallbackModule(s.ModuleFromPath(path))
	}
	return info
}

func (s *TreeSitterStrategy) ModuleFromPath(path string) string {
	return modpath.Infer(path, s.rules)
}
