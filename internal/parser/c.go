package parser

import "github.com/smacker/go-tree-sitter/c"

var cGrammar = grammarSpec{
	symbol:  "c",
	builtin: c.GetLanguage,
	kinds: map[string]NodeKind{
		"function_definition": KindFunction,
		"struct_specifier":    KindType,
		"union_specifier":     KindType,
		"enum_specifier":      KindType,
	},
}
