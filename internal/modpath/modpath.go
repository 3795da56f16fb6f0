// Package modpath infers a module path from a file's location when the file
// itself declares no module, as with Rust's crate-root and mod.rs layouts.
//
// Inference is a textual heuristic over path segments. Non-standard source
// roots and layouts are not recognized.
package modpath

import (
	"path"
	"strings"

	"github.com/snipkit/clipctx/internal/parser"
)

// Separator joins module path segments.
const Separator = "::"

// Rules describes a language's source layout conventions.
type Rules struct {
	// SourceRoots are directory names that mark the start of the module
	// tree. The last one found in the path wins.
	SourceRoots []string
	// Extensions are stripped from the final segment. Compared case-sensitively.
	Extensions []string
	// RootFiles name the file, without extension, that denotes the package
	// root itself (lib, main).
	RootFiles []string
	// IndexFile names the file, without extension, that stands for its
	// containing directory (mod, __init__).
	IndexFile string
}

// Rust source layout: src/a/b.rs is a::b, src/a/mod.rs is a, src/lib.rs is
// the crate root.
var Rust = Rules{
	SourceRoots: []string{"src"},
	Extensions:  []string{".rs"},
	RootFiles:   []string{"lib", "main"},
	IndexFile:   "mod",
}

// Python package layout under src/ or lib/.
var Python = Rules{
	SourceRoots: []string{"src", "lib"},
	Extensions:  []string{".py", ".pyi"},
	RootFiles:   []string{"__main__"},
	IndexFile:   "__init__",
}

// RulesFor returns the layout rules for lang and whether it has any.
func RulesFor(lang parser.Language) (Rules, bool) {
	switch lang {
	case parser.Rust:
		return Rust, true
	case parser.Python:
		return Python, true
	default:
		return Rules{}, false
	}
}

// WithSourceRoots returns a copy of r using roots instead of its default
// source roots. An empty roots keeps the defaults.
func (r Rules) WithSourceRoots(roots []string) Rules {
	if len(roots) == 0 {
		return r
	}
	out := r
	out.SourceRoots = append([]string(nil), roots...)
	return out
}

// Infer returns the module path for filePath, or "" when the path is not
// under a source root or names the package root.
func Infer(filePath string, r Rules) string {
	if filePath == "" || len(r.SourceRoots) == 0 {
		return ""
	}

	normalized := strings.ReplaceAll(filePath, "\\", "/")
	segments := strings.Split(normalized, "/")

	// Only directory segments can be source roots; the file name cannot.
	root := -1
	for i := len(segments) - 2; i >= 0; i-- {
		if r.isSourceRoot(segments[i]) {
			root = i
			break
		}
	}
	if root < 0 {
		return ""
	}

	remainder := make([]string, 0, len(segments)-root-1)
	for _, seg := range segments[root+1:] {
		if seg != "" && seg != "." {
			remainder = append(remainder, seg)
		}
	}
	if len(remainder) == 0 {
		return ""
	}

	last := len(remainder) - 1
	remainder[last] = r.stripExtension(remainder[last])

	if len(remainder) == 1 && r.isRootFile(remainder[0]) {
		return ""
	}
	if r.IndexFile != "" && remainder[last] == r.IndexFile {
		remainder = remainder[:last]
	}
	if len(remainder) == 0 {
		return ""
	}
	return strings.Join(remainder, Separator)
}

func (r Rules) isSourceRoot(seg string) bool {
	for _, root := range r.SourceRoots {
		if seg == root {
			return true
		}
	}
	return false
}

func (r Rules) isRootFile(name string) bool {
	for _, f := range r.RootFiles {
		if name == f {
			return true
		}
	}
	return false
}

func (r Rules) stripExtension(name string) string {
	ext := path.Ext(name)
	for _, e := range r.Extensions {
		if ext == e {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
