package resolve

import (
	"fmt"
	"sync"
	"time"

	"github.com/snipkit/clipctx/internal/modpath"
	"github.com/snipkit/clipctx/internal/parser"
)

// Factory constructs a strategy. It runs at most once per language.
type Factory func() (Strategy, error)

// LanguageOptions tunes the default strategy for one language.
type LanguageOptions struct {
	// GrammarLibrary is a shared library to load the grammar from instead of
	// the builtin copy.
	GrammarLibrary string
	// SourceRoots replaces the default source-root markers for path
	// inference.
	SourceRoots []string
}

// Options configures a Registry.
type Options struct {
	Languages      map[parser.Language]LanguageOptions
	GrammarTimeout time.Duration
}

type registryEntry struct {
	once     sync.Once
	factory  Factory
	strategy Strategy
	err      error
}

// Registry maps languages to lazily constructed strategies. Each strategy
// is constructed once, on first use, even under concurrent first requests.
type Registry struct {
	mu      sync.Mutex
	entries map[parser.Language]*registryEntry
}

// NewRegistry returns a registry with a tree-sitter strategy for every
// supported language.
func NewRegistry(opts Options) *Registry {
	r := &Registry{entries: make(map[parser.Language]*registryEntry)}
	for _, lang := range parser.SupportedLanguages() {
		r.Register(lang, defaultFactory(lang, opts))
	}
	return r
}

func defaultFactory(lang parser.Language, opts Options) Factory {
	return func() (Strategy, error) {
		langOpts := opts.Languages[lang]
		rules, _ := modpath.RulesFor(lang)
		rules = rules.WithSourceRoots(langOpts.SourceRoots)

		parserOpts := []parser.Option{parser.WithGrammarLibrary(langOpts.GrammarLibrary)}
		if opts.GrammarTimeout > 0 {
			parserOpts = append(parserOpts, parser.WithLoadTimeout(opts.GrammarTimeout))
		}
		return NewTreeSitterStrategy(lang, rules, parserOpts...)
	}
}

// Register installs factory for lang, replacing any strategy not yet
// constructed.
func (r *Registry) Register(lang parser.Language, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[lang] = &registryEntry{factory: factory}
}

// Strategy returns the strategy for lang, constructing it on first use.
// ok is false when no strategy is registered.
func (r *Registry) Strategy(lang parser.Language) (strategy Strategy, ok bool, err error) {
	r.mu.Lock()
	entry, ok := r.entries[lang]
	r.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	entry.once.Do(func() {
		defer func() {
			if p := recover(); p != nil {
				entry.strategy, entry.err = nil, fmt.Errorf("construct %s strategy: panic: %v", lang, p)
			}
		}()
		entry.strategy, entry.err = entry.factory()
		if entry.err == nil && entry.strategy == nil {
			entry.err = fmt.Errorf("construct %s strategy: factory returned no strategy", lang)
		}
	})
	return entry.strategy, true, entry.err
}

// Languages returns the registered languages.
func (r *Registry) Languages() []parser.Language {
	r.mu.Lock()
	defer r.mu.Unlock()
	langs := make([]parser.Language, 0, len(r.entries))
	for lang := range r.entries {
		langs = append(langs, lang)
	}
	return langs
}
