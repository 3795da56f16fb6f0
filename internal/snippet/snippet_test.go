package snippet

import (
	"testing"

	"github.com/snipkit/clipctx/internal/extract"
	"github.com/snipkit/clipctx/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Snippet {
	return Snippet{
		Path:       "/work/demo/src/net/http.rs",
		RelPath:    "src/net/http.rs",
		StartLine:  10,
		EndLine:    12,
		Code:       "fn serve() {\n    listen();\n}\n",
		LanguageID: "rust",
		Context: extract.Info{
			FunctionName: "Server::serve",
			ClassName:    "Server",
			ModuleName:   "net::http",
		},
		Git: git.Metadata{
			Branch: "main",
			Commit: "abc1234",
		},
	}
}

func TestRender_Rich(t *testing.T) {
	got := Render(sample(), Options{Style: StyleRich})
	want := "**File:** src/net/http.rs\n" +
		"**Lines:** 10-12\n" +
		"**Function:** Server::serve\n" +
		"**Class:** Server\n" +
		"**Module:** net::http\n" +
		"**Branch:** main\n" +
		"**Commit:** abc1234\n" +
		"\n" +
		"```rust\n" +
		"fn serve() {\n    listen();\n}\n" +
		"```\n"
	assert.Equal(t, want, got)
}

func TestRender_PlainWithFieldOrder(t *testing.T) {
	got := Render(sample(), Options{
		Style:  StylePlain,
		Fields: []string{FieldModule, FieldFile, "bogus", FieldPermalink},
	})
	want := "Module: net::http\n" +
		"File: src/net/http.rs\n" +
		"\n" +
		"fn serve() {\n    listen();\n}\n"
	assert.Equal(t, want, got)
}

func TestRender_NoStructuralContext(t *testing.T) {
	s := sample()
	s.Context = extract.Info{}
	s.Git = git.Metadata{}
	s.RelPath = ""

	got := Render(s, Options{Style: StylePlain})
	assert.Equal(t, "File: /work/demo/src/net/http.rs\nLines: 10-12\n\nfn serve() {\n    listen();\n}\n", got)
}

func TestRender_FenceLongerThanCodeBackticks(t *testing.T) {
	s := Snippet{Code: "doc := `\n```go\n````\n`", LanguageID: "go"}
	got := Render(s, Options{Style: StyleRich, Fields: []string{FieldFunction}})
	assert.Equal(t, "`````go\ndoc := `\n```go\n````\n`\n`````\n", got)
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]Style{"": StyleRich, "rich": StyleRich, "Markdown": StyleRich, "plain": StylePlain, "text": StylePlain} {
		got, err := ParseStyle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStyle("html")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	text := "one\ntwo\nthree\nfour\n"
	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{"middle", 2, 3, "two\nthree"},
		{"single", 4, 4, "four"},
		{"clamped", 0, 99, "one\ntwo\nthree\nfour"},
		{"inverted", 3, 2, ""},
		{"past end", 9, 12, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(text, tt.start, tt.end))
		})
	}
	assert.Empty(t, Extract("", 1, 1))
}

func TestLineRange(t *testing.T) {
	assert.Equal(t, "7", lineRange(7, 7))
	assert.Equal(t, "7-9", lineRange(7, 9))
	assert.Empty(t, lineRange(0, 3))
}

func TestIsField(t *testing.T) {
	for _, f := range DefaultFields() {
		assert.True(t, IsField(f), f)
	}
	assert.False(t, IsField("author"))
}
