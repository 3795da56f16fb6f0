package modpath

import (
	"testing"

	"github.com/snipkit/clipctx/internal/parser"
	"github.com/stretchr/testify/assert"
)

func TestInfer_Rust(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/dev/project/src/net/http.rs", "net::http"},
		{"src/net/http/mod.rs", "net::http"},
		{"src/util.rs", "util"},
		{"src/lib.rs", ""},
		{"src/main.rs", ""},
		{"/very/deep/tree/of/dirs/crate/src/lib.rs", ""},
		{"src/mod.rs", ""},
		{"C:\\work\\crate\\src\\net\\tcp.rs", "net::tcp"},
		{"/workspace/src/tools/crate/src/parse/expr.rs", "parse::expr"},
		{"src/bin/main.rs", "bin::main"},
		{"crate/lib/net.rs", ""},
		{"/tmp/src.rs", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.path, Rust))
		})
	}
}

func TestInfer_Python(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"project/src/pkg/models/user.py", "pkg::models::user"},
		{"project/src/pkg/__init__.py", "pkg"},
		{"project/lib/pkg/stubs.pyi", "pkg::stubs"},
		{"project/src/__main__.py", ""},
		{"project/app/views.py", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.path, Python))
		})
	}
}

func TestInfer_UnknownExtensionKept(t *testing.T) {
	assert.Equal(t, "net::README.md", Infer("src/net/README.md", Rust))
}

func TestInfer_NoRoots(t *testing.T) {
	assert.Empty(t, Infer("src/net/http.rs", Rules{}))
}

func TestRulesFor(t *testing.T) {
	r, ok := RulesFor(parser.Rust)
	assert.True(t, ok)
	assert.Equal(t, "mod", r.IndexFile)

	_, ok = RulesFor(parser.Python)
	assert.True(t, ok)

	_, ok = RulesFor(parser.Java)
	assert.False(t, ok)
}

func TestWithSourceRoots(t *testing.T) {
	custom := Rust.WithSourceRoots([]string{"crates"})
	assert.Equal(t, "net::http", Infer("repo/crates/net/http.rs", custom))
	assert.Empty(t, Infer("repo/src/net/http.rs", custom))
	assert.Equal(t, []string{"src"}, Rust.SourceRoots, "defaults must not change")

	assert.Equal(t, Rust, Rust.WithSourceRoots(nil))
}
