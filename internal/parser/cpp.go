package parser

import "github.com/smacker/go-tree-sitter/cpp"

// cppGrammar leaves lambda_expression out for the same reason Rust leaves
// out closures.
var cppGrammar = grammarSpec{
	symbol:  "cpp",
	builtin: cpp.GetLanguage,
	kinds: map[string]NodeKind{
		"function_definition":  KindFunction,
		"class_specifier":      KindType,
		"struct_specifier":     KindType,
		"union_specifier":      KindType,
		"enum_specifier":       KindType,
		"namespace_definition": KindModule,
	},
}
