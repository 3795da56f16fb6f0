package resolve

import (
	"bytes"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Document is the text buffer a context request runs against.
type Document interface {
	// Key identifies the document across revisions (a URI or absolute path).
	Key() string
	// Path is the file path used for module inference.
	Path() string
	// Revision increases whenever the text changes.
	Revision() int64
	// LanguageID is the editor language identifier ("rust", "typescriptreact").
	LanguageID() string
	// Text returns the document's current text.
	Text() ([]byte, error)
}

// Position is a zero-based line and character column.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Selection is a range between two positions. Start may come after End.
type Selection struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// IsEmpty reports whether the selection covers no text.
func (s Selection) IsEmpty() bool {
	return s.Start == s.End
}

// Span is a byte-addressed range in a parsed tree.
type Span struct {
	Start sitter.Point
	End   sitter.Point
}

// spanFor converts a cursor, or a non-empty selection, to tree coordinates.
func spanFor(source []byte, pos Position, sel *Selection) Span {
	if sel != nil && !sel.IsEmpty() {
		return Span{Start: pointAt(source, sel.Start), End: pointAt(source, sel.End)}
	}
	p := pointAt(source, pos)
	return Span{Start: p, End: p}
}

// pointAt converts a character column into a byte column on the same line.
// Columns past the end of the line clamp to it. Lines past the end of the
// text are passed through so the lookup falls back to the root.
func pointAt(source []byte, pos Position) sitter.Point {
	line := max(pos.Line, 0)
	col := max(pos.Column, 0)

	start := 0
	for i := 0; i < line; i++ {
		nl := bytes.IndexByte(source[start:], '\n')
		if nl < 0 {
			return sitter.Point{Row: uint32(line), Column: 0}
		}
		start += nl + 1
	}

	text := source[start:]
	if nl := bytes.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}

	offset := 0
	for i := 0; i < col && offset < len(text); i++ {
		_, size := utf8.DecodeRune(text[offset:])
		offset += size
	}
	return sitter.Point{Row: uint32(line), Column: uint32(offset)}
}
