package parser

import (
	"context"
	"errors"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrNoGrammar is returned when a GrammarSource has neither a library path
// nor a builtin grammar.
var ErrNoGrammar = errors.New("no grammar source configured")

// GrammarSource describes where a grammar comes from. Library takes
// precedence over Builtin when both are set.
type GrammarSource struct {
	// Library is the path to a compiled grammar shared library exporting
	// tree_sitter_<name>.
	Library string
	// Builtin returns the grammar compiled into the binary.
	Builtin func() *sitter.Language
	// Loader, when set, replaces both of the above. Useful for grammars
	// fetched from somewhere other than the local filesystem.
	Loader func(ctx context.Context) (*sitter.Language, error)
}

// load resolves the grammar, giving up when ctx expires. A shared library
// load cannot be interrupted, so on timeout the loading goroutine is
// abandoned and its result discarded.
func (s GrammarSource) load(ctx context.Context, symbol string) (*sitter.Language, error) {
	type outcome struct {
		lang *sitter.Language
		err  error
	}

	done := make(chan outcome, 1)
	go func() {
		lang, err := s.resolve(ctx, symbol)
		done <- outcome{lang: lang, err: err}
	}()

	select {
	case out := <-done:
		return out.lang, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s GrammarSource) resolve(ctx context.Context, symbol string) (*sitter.Language, error) {
	switch {
	case s.Loader != nil:
		return s.Loader(ctx)
	case s.Library != "":
		if _, err := os.Stat(s.Library); err != nil {
			return nil, err
		}
		return loadSharedGrammar(s.Library, symbol)
	case s.Builtin != nil:
		lang := s.Builtin()
		if lang == nil {
			return nil, ErrNoGrammar
		}
		return lang, nil
	default:
		return nil, ErrNoGrammar
	}
}
