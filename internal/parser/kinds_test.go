package parser

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestRubyParser(t *testing.T) {
	code := `
module Greetings
  class Greeter
    def initialize(name)
      @name = name
    end

    def greet
      puts "Hello, #{@name}"
    end
  end
end
`

	p, err := NewParser(Ruby)
	if err != nil {
		t.Fatalf("Failed to create Ruby parser: %v", err)
	}

	result, err := p.Parse(context.Background(), []byte(code))
	if err != nil {
		t.Fatalf("Failed to parse Ruby code: %v", err)
	}
	defer result.Close()

	if result.Root.Type() != "program" {
		t.Errorf("Expected root type 'program', got %s", result.Root.Type())
	}

	counts := map[NodeKind]int{}
	result.WalkNodes(func(n *sitter.Node) bool {
		// Keywords such as "class" and "module" are anonymous nodes that
		// share their type name with the declaration.
		if n.IsNamed() {
			counts[p.Classify(n.Type())]++
		}
		return true
	})

	if counts[KindFunction] != 2 {
		t.Errorf("Expected 2 function nodes, got %d", counts[KindFunction])
	}
	if counts[KindType] != 1 {
		t.Errorf("Expected 1 type node, got %d", counts[KindType])
	}
	if counts[KindModule] != 1 {
		t.Errorf("Expected 1 module node, got %d", counts[KindModule])
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		lang     Language
		nodeType string
		want     NodeKind
	}{
		{Rust, "function_item", KindFunction},
		{Rust, "impl_item", KindImpl},
		{Rust, "struct_item", KindType},
		{Rust, "trait_item", KindType},
		{Rust, "mod_item", KindModule},
		{Rust, "closure_expression", KindOther},
		{Go, "method_declaration", KindFunction},
		{Go, "func_literal", KindOther},
		{Go, "type_spec", KindType},
		{Python, "class_definition", KindType},
		{Python, "lambda", KindOther},
		{CSharp, "namespace_declaration", KindModule},
		{CSharp, "file_scoped_namespace_declaration", KindModuleStatement},
		{PHP, "namespace_definition", KindModuleStatement},
		{Cpp, "namespace_definition", KindModule},
		{Cpp, "lambda_expression", KindOther},
		{TypeScript, "internal_module", KindModule},
		{TypeScript, "arrow_function", KindOther},
		{Ruby, "module", KindModule},
		{Language("cobol"), "paragraph", KindOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang)+"/"+tt.nodeType, func(t *testing.T) {
			if got := Classify(tt.lang, tt.nodeType); got != tt.want {
				t.Errorf("Classify(%s, %q) = %s, want %s", tt.lang, tt.nodeType, got, tt.want)
			}
		})
	}
}

func TestNodeTypes(t *testing.T) {
	modules := NodeTypes(Rust, KindModule)
	if len(modules) != 1 || modules[0] != "mod_item" {
		t.Errorf("expected [mod_item], got %v", modules)
	}

	if got := NodeTypes(Java, KindModule); len(got) != 0 {
		t.Errorf("expected no Java module kinds, got %v", got)
	}
}

func TestNodeKindString(t *testing.T) {
	tests := map[NodeKind]string{
		KindOther:           "other",
		KindFunction:        "function",
		KindImpl:            "impl",
		KindType:            "type",
		KindModule:          "module",
		KindModuleStatement: "module_statement",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
