// Package workspace adapts files on disk to the resolve engine: documents
// backed by the revision store, and a watcher that reports file changes.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/snipkit/clipctx/internal/parser"
)

// RevisionStore assigns revisions to file contents.
type RevisionStore interface {
	Revision(path string, content []byte) (int64, error)
}

// FileDocument is a snapshot of a file on disk. Text and Revision always
// describe the same content.
type FileDocument struct {
	path       string
	languageID string
	text       []byte
	revision   int64
}

// Option configures LoadFile.
type Option func(*loadOptions)

type loadOptions struct {
	languageID string
	store      RevisionStore
	logger     *slog.Logger
}

// WithLanguageID overrides the language detected from the file extension.
func WithLanguageID(id string) Option {
	return func(o *loadOptions) { o.languageID = id }
}

// WithStore numbers revisions through store, so they persist across runs.
func WithStore(store RevisionStore) Option {
	return func(o *loadOptions) { o.store = store }
}

// WithLogger sets the logger for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) { o.logger = logger }
}

// LoadFile reads path and assigns it a revision. Without a store, or when
// the store fails, the revision is derived from the content hash: equal
// content gives an equal revision, which is all the tree cache needs.
func LoadFile(path string, opts ...Option) (*FileDocument, error) {
	o := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, &parser.FileReadError{Path: abs, Err: err}
	}

	languageID := o.languageID
	if languageID == "" {
		languageID = string(parser.LanguageFromExtension(filepath.Ext(abs)))
	}

	revision := hashRevision(text)
	if o.store != nil {
		if rev, err := o.store.Revision(abs, text); err == nil {
			revision = rev
		} else {
			o.logger.Warn("revision store unavailable, using content hash", "path", abs, "error", err)
		}
	}

	return &FileDocument{path: abs, languageID: languageID, text: text, revision: revision}, nil
}

// NewDocument builds a document from text already in memory.
func NewDocument(path, languageID string, text []byte, revision int64) *FileDocument {
	return &FileDocument{path: path, languageID: languageID, text: text, revision: revision}
}

func (d *FileDocument) Key() string        { return d.path }
func (d *FileDocument) Path() string       { return d.path }
func (d *FileDocument) Revision() int64    { return d.revision }
func (d *FileDocument) LanguageID() string { return d.languageID }

func (d *FileDocument) Text() ([]byte, error) {
	return d.text, nil
}

func hashContent(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// hashRevision maps content to a non-negative revision. Hash revisions are
// not ordered; long-lived callers load through Revisions instead.
func hashRevision(content []byte) int64 {
	return int64(hashContent(content) >> 1)
}
