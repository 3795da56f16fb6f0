package parser

import "github.com/smacker/go-tree-sitter/golang"

// goGrammar classifies Go declarations. Go has no nested modules; the
// receiver of a method stands in for an implementation block.
var goGrammar = grammarSpec{
	symbol:  "go",
	builtin: golang.GetLanguage,
	kinds: map[string]NodeKind{
		"function_declaration": KindFunction,
		"method_declaration":   KindFunction,
		"type_spec":            KindType,
		"type_alias":           KindType,
	},
}
