// Package parser provides tree-sitter based code parsing for multiple languages.
//
// A Parser owns one grammar. The grammar is loaded lazily on first use, exactly
// once per Parser, either from the copy compiled into the binary or from a
// shared library on disk. A failed load is permanent: every later Initialize or
// Parse call returns the same *GrammarLoadError.
package parser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language represents a supported programming language.
type Language string

const (
	// Go represents the Go programming language.
	Go Language = "go"
	// TypeScript represents the TypeScript programming language.
	TypeScript Language = "typescript"
	// JavaScript represents the JavaScript programming language.
	JavaScript Language = "javascript"
	// Python represents the Python programming language.
	Python Language = "python"
	// Rust represents the Rust programming language.
	Rust Language = "rust"
	// Java represents the Java programming language.
	Java Language = "java"
	// CSharp represents the C# programming language.
	CSharp Language = "csharp"
	// C represents the C programming language.
	C Language = "c"
	// Cpp represents the C++ programming language.
	Cpp Language = "cpp"
	// PHP represents the PHP programming language.
	PHP Language = "php"
	// Kotlin represents the Kotlin programming language.
	Kotlin Language = "kotlin"
	// Ruby represents the Ruby programming language.
	Ruby Language = "ruby"
)

// DefaultLoadTimeout bounds how long grammar loading may take.
const DefaultLoadTimeout = 10 * time.Second

// Parser wraps a tree-sitter grammar for code parsing.
// It is safe for concurrent use; each Parse call borrows its own engine.
type Parser struct {
	lang    Language
	spec    grammarSpec
	source  GrammarSource
	timeout time.Duration

	once    sync.Once
	grammar *sitter.Language
	initErr error

	engines sync.Pool
}

// Option configures a Parser.
type Option func(*Parser)

// WithGrammarLibrary loads the grammar from a shared library at path instead
// of the copy compiled into the binary. An empty path keeps the builtin grammar.
func WithGrammarLibrary(path string) Option {
	return func(p *Parser) {
		if path != "" {
			p.source = GrammarSource{Library: path}
		}
	}
}

// WithGrammarSource replaces the grammar source entirely.
func WithGrammarSource(src GrammarSource) Option {
	return func(p *Parser) {
		p.source = src
	}
}

// WithLoadTimeout sets the wall-clock ceiling for grammar loading.
// Zero or negative disables the ceiling.
func WithLoadTimeout(d time.Duration) Option {
	return func(p *Parser) {
		p.timeout = d
	}
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the AST.
	Root *sitter.Node
	// Source is the original source code that was parsed.
	Source []byte
	// FilePath is the path to the source file (empty for in-memory parsing).
	FilePath string
	// Language is the programming language of the source.
	Language Language
}

// NewParser creates a parser for the given language. The grammar is not
// loaded until Initialize or Parse is called.
// Returns an UnsupportedLanguageError if the language is not supported.
func NewParser(lang Language, opts ...Option) (*Parser, error) {
	spec, ok := specFor(lang)
	if !ok {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	p := &Parser{
		lang:    lang,
		spec:    spec,
		source:  GrammarSource{Builtin: spec.builtin},
		timeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Initialize loads the grammar. The first call does the work; subsequent
// calls return the stored outcome without touching the grammar source again.
func (p *Parser) Initialize(ctx context.Context) error {
	p.once.Do(func() {
		p.grammar, p.initErr = p.load(ctx)
	})
	return p.initErr
}

func (p *Parser) load(ctx context.Context) (*sitter.Language, error) {
	// The outcome is cached for the life of the process, so a caller giving up
	// early must not turn into a permanent failure for everyone else.
	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	lang, err := p.source.load(ctx, p.spec.symbol)
	if err != nil {
		return nil, &GrammarLoadError{Language: string(p.lang), Path: p.source.Library, Err: err}
	}
	return lang, nil
}

// Parse parses source code and returns the AST. Tree-sitter is error tolerant,
// so malformed source still yields a tree containing ERROR nodes. Engine
// failures are reported as *ParseError.
func (p *Parser) Parse(ctx context.Context, source []byte) (result *ParseResult, err error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}

	engine := p.borrow()
	defer p.engines.Put(engine)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ParseError{Message: fmt.Sprintf("parser panic: %v", r)}
		}
	}()

	tree, err := engine.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Err: err}
	}
	if tree == nil {
		return nil, &ParseError{Message: "parser returned no tree"}
	}

	return &ParseResult{
		Tree:     tree,
		Root:     tree.RootNode(),
		Source:   source,
		Language: p.lang,
	}, nil
}

// borrow returns an engine bound to the loaded grammar. Engines are not safe
// for concurrent use, so each Parse call holds one exclusively.
func (p *Parser) borrow() *sitter.Parser {
	if engine, ok := p.engines.Get().(*sitter.Parser); ok {
		return engine
	}
	engine := sitter.NewParser()
	engine.SetLanguage(p.grammar)
	return engine
}

// ParseFile parses a file from disk.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	result, err := p.Parse(ctx, source)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}

	result.FilePath = path
	return result, nil
}

// Language returns the language this parser is configured for.
func (p *Parser) Language() Language {
	return p.lang
}

// Classify returns the coarse kind of a node type in this parser's grammar.
func (p *Parser) Classify(nodeType string) NodeKind {
	return p.spec.kinds[nodeType]
}

// Close releases the parse tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors returns true if the parse tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// WalkNodes traverses the AST depth-first, calling the visitor function
// for each node. If the visitor returns false, traversal stops.
func (r *ParseResult) WalkNodes(visitor func(*sitter.Node) bool) {
	if r.Root == nil {
		return
	}
	walkNode(r.Root, visitor)
}

// walkNode is a helper for depth-first AST traversal.
func walkNode(node *sitter.Node, visitor func(*sitter.Node) bool) bool {
	if !visitor(node) {
		return false
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if !walkNode(node.Child(int(i)), visitor) {
			return false
		}
	}
	return true
}

// FindNodes returns all nodes matching the given predicate.
func (r *ParseResult) FindNodes(predicate func(*sitter.Node) bool) []*sitter.Node {
	var nodes []*sitter.Node
	r.WalkNodes(func(node *sitter.Node) bool {
		if predicate(node) {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// FindNodesByType returns all nodes of the specified type.
func (r *ParseResult) FindNodesByType(nodeType string) []*sitter.Node {
	return r.FindNodes(func(node *sitter.Node) bool {
		return node.Type() == nodeType
	})
}

// NodeText returns the source text for a node.
func (r *ParseResult) NodeText(node *sitter.Node) string {
	if node == nil || r.Source == nil {
		return ""
	}
	return node.Content(r.Source)
}

// LanguageFromExtension returns the language for a file extension.
// Returns empty string if the extension is not recognized.
func LanguageFromExtension(ext string) Language {
	switch strings.ToLower(ext) {
	case ".go":
		return Go
	case ".ts", ".tsx", ".mts", ".cts":
		return TypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return JavaScript
	case ".py", ".pyi":
		return Python
	case ".rs":
		return Rust
	case ".java":
		return Java
	case ".cs":
		return CSharp
	case ".c", ".h":
		return C
	case ".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx":
		return Cpp
	case ".php":
		return PHP
	case ".kt", ".kts":
		return Kotlin
	case ".rb", ".rake":
		return Ruby
	default:
		return ""
	}
}

// LanguageFromID maps an editor language identifier to a Language.
// Editors use a few identifiers that differ from the grammar names
// (typescriptreact, c_sharp, ...). Returns false for unknown identifiers.
func LanguageFromID(id string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "go", "golang":
		return Go, true
	case "typescript", "typescriptreact", "tsx":
		return TypeScript, true
	case "javascript", "javascriptreact", "jsx":
		return JavaScript, true
	case "python":
		return Python, true
	case "rust":
		return Rust, true
	case "java":
		return Java, true
	case "csharp", "c_sharp", "c#":
		return CSharp, true
	case "c":
		return C, true
	case "cpp", "c++":
		return Cpp, true
	case "php":
		return PHP, true
	case "kotlin":
		return Kotlin, true
	case "ruby":
		return Ruby, true
	default:
		return "", false
	}
}

// SupportedLanguages returns every language with a registered grammar.
func SupportedLanguages() []Language {
	return []Language{Go, TypeScript, JavaScript, Python, Rust, Java, CSharp, C, Cpp, PHP, Kotlin, Ruby}
}

// SupportedExtensions returns all file extensions supported for parsing.
func SupportedExtensions() []string {
	return []string{
		".go",
		".ts", ".tsx", ".mts", ".cts",
		".js", ".jsx", ".mjs", ".cjs",
		".py", ".pyi",
		".rs",
		".java",
		".cs",
		".c", ".h",
		".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx",
		".php",
		".kt", ".kts",
		".rb", ".rake",
	}
}
