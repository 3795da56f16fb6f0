// Package resolve answers one question: what function, type and module
// lexically enclose a position in a document?
//
// The Engine picks a Strategy by the document's language id, fetches or
// refreshes the document's tree through the tree cache, and runs the
// strategy's locate and resolve steps. It never fails. Unsupported languages
// yield an empty record; grammar and parse faults are logged and degrade to
// the path-inferred module.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/snipkit/clipctx/internal/extract"
	"github.com/snipkit/clipctx/internal/parser"
	"github.com/snipkit/clipctx/internal/treecache"
)

// Engine resolves structural context for documents. It is safe for
// concurrent use.
type Engine struct {
	registry *Registry
	trees    *treecache.Cache
	logger   *slog.Logger

	// grammarReported records languages whose grammar failure was logged.
	grammarReported sync.Map
}

// NewEngine creates an engine. A nil logger discards log output.
func NewEngine(registry *Registry, trees *treecache.Cache, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{registry: registry, trees: trees, logger: logger}
}

// ContextInfo returns the structural context at pos, or of the whole
// selection when sel is non-empty.
func (e *Engine) ContextInfo(ctx context.Context, doc Document, pos Position, sel *Selection) (info extract.Info) {
	if doc == nil {
		return extract.Info{}
	}
	lang, ok := parser.LanguageFromID(doc.LanguageID())
	if !ok {
		return extract.Info{}
	}

	var strategy Strategy
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("context resolution panicked",
				"language", lang, "path", doc.Path(), "panic", fmt.Sprint(r))
			info = fallback(strategy, doc.Path())
		}
	}()

	strategy, ok, err := e.registry.Strategy(lang)
	if !ok {
		return extract.Info{}
	}
	if err != nil {
		e.reportGrammar(lang, err)
		return extract.Info{}
	}

	if err := strategy.Initialize(ctx); err != nil {
		e.reportGrammar(lang, err)
		return fallback(strategy, doc.Path())
	}

	entry, err := e.trees.GetTree(ctx, treeKey(lang, doc.Key()), doc.Revision(), doc.Text, strategy.Parse)
	if err != nil {
		e.logger.Warn("parse failed",
			"language", lang, "path", doc.Path(), "revision", doc.Revision(), "error", err)
		return fallback(strategy, doc.Path())
	}

	span := spanFor(entry.Result.Source, pos, sel)
	chain := strategy.Locate(entry.Result, span)
	return strategy.Resolve(chain, entry.Result, doc.Path())
}

// Forget drops the cached tree for a document key.
func (e *Engine) Forget(key string) {
	for _, lang := range e.registry.Languages() {
		e.trees.Evict(treeKey(lang, key))
	}
}

// Stats reports tree cache activity.
func (e *Engine) Stats() treecache.Stats {
	return e.trees.Stats()
}

// reportGrammar logs a grammar failure the first time it is seen for lang.
// Failures are permanent, so repeating them per request adds nothing.
func (e *Engine) reportGrammar(lang parser.Language, err error) {
	if _, seen := e.grammarReported.LoadOrStore(lang, struct{}{}); seen {
		e.logger.Debug("grammar unavailable", "language", lang)
		return
	}
	e.logger.Error("grammar unavailable", "language", lang, "error", err)
}

func fallback(strategy Strategy, path string) extract.Info {
	if strategy == nil {
		return extract.Info{}
	}
	return extract.Info{}.WithFallbackModule(strategy.ModuleFromPath(path))
}

// treeKey scopes a document key by language so a document whose language
// changes never reuses a tree from another grammar.
func treeKey(lang parser.Language, key string) string {
	return string(lang) + ":" + key
}
