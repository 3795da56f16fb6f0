// Package clip serves context and snippet requests for one workspace. The
// CLI commands and the MCP server both go through a Service.
package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/snipkit/clipctx/internal/cache"
	"github.com/snipkit/clipctx/internal/config"
	"github.com/snipkit/clipctx/internal/git"
	"github.com/snipkit/clipctx/internal/output"
	"github.com/snipkit/clipctx/internal/parser"
	"github.com/snipkit/clipctx/internal/resolve"
	"github.com/snipkit/clipctx/internal/snippet"
	"github.com/snipkit/clipctx/internal/treecache"
	"github.com/snipkit/clipctx/internal/workspace"
)

// ErrInvalidRange is returned for line or column numbers below 1.
var ErrInvalidRange = errors.New("invalid range")

// Service holds the long-lived pieces: the engine with its tree cache and
// the revision store. It is safe for concurrent use.
type Service struct {
	root      string
	engine    *resolve.Engine
	store     *cache.Cache
	revisions *workspace.Revisions
	header    snippet.Options
	logger    *slog.Logger
}

// EngineOptions maps the languages section of cfg to registry options.
// Relative grammar paths resolve against root.
func EngineOptions(cfg *config.Config, root string) resolve.Options {
	opts := resolve.Options{
		Languages:      make(map[parser.Language]resolve.LanguageOptions),
		GrammarTimeout: cfg.Cache.GrammarTimeout,
	}
	for _, lang := range parser.SupportedLanguages() {
		lo := resolve.LanguageOptions{
			GrammarLibrary: cfg.GrammarPath(lang, root),
			SourceRoots:    cfg.SourceRoots(lang),
		}
		if lo.GrammarLibrary != "" || len(lo.SourceRoots) > 0 {
			opts.Languages[lang] = lo
		}
	}
	return opts
}

// HeaderOptions maps the header section of cfg to render options.
func HeaderOptions(cfg *config.Config) snippet.Options {
	style, err := snippet.ParseStyle(cfg.Header.Style)
	if err != nil {
		style = snippet.StyleRich
	}
	return snippet.Options{Style: style, Fields: cfg.Header.Fields, Fence: cfg.Header.Fence}
}

// Open builds a service for the workspace at root. The revision store is
// opened when root has a .clipctx directory; without one, or when the store
// cannot be opened, revisions are counted in process.
func Open(cfg *config.Config, root string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}

	trees, err := treecache.New(cfg.Cache.MaxTrees)
	if err != nil {
		return nil, err
	}
	registry := resolve.NewRegistry(EngineOptions(cfg, absRoot))

	s := &Service{
		root:   absRoot,
		engine: resolve.NewEngine(registry, trees, logger),
		header: HeaderOptions(cfg),
		logger: logger,
	}

	configDir := filepath.Join(absRoot, config.ConfigDirName)
	if info, err := os.Stat(configDir); err == nil && info.IsDir() {
		store, err := cache.Open(configDir)
		if err != nil {
			logger.Warn("revision store unavailable", "dir", configDir, "error", err)
		} else {
			s.store = store
		}
	}
	if s.store != nil {
		s.revisions = workspace.NewRevisions(s.store, logger)
	} else {
		s.revisions = workspace.NewRevisions(nil, logger)
	}
	return s, nil
}

// Root returns the absolute workspace root.
func (s *Service) Root() string { return s.root }

// Store returns the revision store, or nil when there is none.
func (s *Service) Store() *cache.Cache { return s.store }

// Close releases the revision store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Context resolves the structural context of r in the file at path. Lines
// and columns in r are 1-based; columns count characters. A zero EndLine
// means a cursor at the start position.
func (s *Service) Context(ctx context.Context, path string, r output.Range) (*output.ContextOutput, error) {
	if r.StartLine < 1 || r.StartColumn < 1 {
		return nil, fmt.Errorf("%w: line and column start at 1", ErrInvalidRange)
	}
	if r.EndLine < 0 || r.EndColumn < 0 {
		return nil, fmt.Errorf("%w: negative end position", ErrInvalidRange)
	}

	doc, err := s.load(path)
	if err != nil {
		return nil, err
	}

	pos := resolve.Position{Line: r.StartLine - 1, Column: r.StartColumn - 1}
	var sel *resolve.Selection
	if r.EndLine > 0 {
		sel = &resolve.Selection{
			Start: pos,
			End:   resolve.Position{Line: r.EndLine - 1, Column: max(r.EndColumn-1, 0)},
		}
	}

	return &output.ContextOutput{
		File:     path,
		Language: doc.LanguageID(),
		Range:    r,
		Context:  s.engine.ContextInfo(ctx, doc, pos, sel),
	}, nil
}

// Snippet collects lines start through end of the file at path, together
// with their structural context and git metadata. Git and context are best
// effort; only an unreadable file or a bad range is an error.
func (s *Service) Snippet(ctx context.Context, path string, start, end int) (snippet.Snippet, error) {
	if start < 1 {
		return snippet.Snippet{}, fmt.Errorf("%w: start line must be at least 1", ErrInvalidRange)
	}
	end = max(end, start)

	doc, err := s.load(path)
	if err != nil {
		return snippet.Snippet{}, err
	}
	return s.snippet(ctx, doc, start, end)
}

func (s *Service) snippet(ctx context.Context, doc resolve.Document, start, end int) (snippet.Snippet, error) {
	text, err := doc.Text()
	if err != nil {
		return snippet.Snippet{}, fmt.Errorf("read %s: %w", doc.Path(), err)
	}

	lines := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n")
	end = min(end, len(lines))
	if start > end {
		return snippet.Snippet{}, fmt.Errorf("%w: file has %d lines", ErrInvalidRange, len(lines))
	}

	sel := lineSelection(lines, start, end)
	info := s.engine.ContextInfo(ctx, doc, sel.Start, &sel)

	meta := git.Open(doc.Path()).Metadata(doc.Path(), start, end)
	rel := meta.RelPath
	if rel == "" {
		rel = s.relPath(doc.Path())
	}

	return snippet.Snippet{
		Path:       doc.Path(),
		RelPath:    rel,
		StartLine:  start,
		EndLine:    end,
		Code:       snippet.Extract(string(text), start, end),
		LanguageID: doc.LanguageID(),
		Context:    info,
		Git:        meta,
	}, nil
}

// Render formats sn with the configured header. A non-empty style
// overrides the configured one.
func (s *Service) Render(sn snippet.Snippet, style snippet.Style) string {
	opts := s.header
	if style != "" {
		opts.Style = style
	}
	return snippet.Render(sn, opts)
}

// Forget drops everything cached for path.
func (s *Service) Forget(path string) {
	abs := s.absPath(path)
	s.engine.Forget(abs)
	s.revisions.Forget(abs)
	if s.store == nil {
		return
	}
	if err := s.store.Forget(abs); err != nil {
		s.logger.Warn("forget revision", "path", abs, "error", err)
	}
}

// Stats reports the revision store and tree cache.
func (s *Service) Stats() (*output.StatsOutput, error) {
	trees := s.engine.Stats()
	out := &output.StatsOutput{Trees: &trees}
	if s.store != nil {
		stats, err := s.store.GetStats()
		if err != nil {
			return nil, err
		}
		out.Store = stats
	}
	return out, nil
}

func (s *Service) load(path string) (*workspace.FileDocument, error) {
	return workspace.LoadFile(s.absPath(path),
		workspace.WithLogger(s.logger),
		workspace.WithStore(s.revisions))
}

// absPath resolves relative paths against the workspace root.
func (s *Service) absPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.root, path)
}

func (s *Service) relPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// lineSelection covers lines start..end (1-based), from the first
// non-blank character of the first line to the end of the last.
func lineSelection(lines []string, start, end int) resolve.Selection {
	first := lines[start-1]
	indent := utf8.RuneCountInString(first) - utf8.RuneCountInString(strings.TrimLeftFunc(first, unicode.IsSpace))
	last := strings.TrimRight(lines[end-1], "\r")
	return resolve.Selection{
		Start: resolve.Position{Line: start - 1, Column: indent},
		End:   resolve.Position{Line: end - 1, Column: utf8.RuneCountInString(last)},
	}
}
