package parser

import "github.com/smacker/go-tree-sitter/php"

var phpGrammar = grammarSpec{
	symbol:  "php",
	builtin: php.GetLanguage,
	kinds: map[string]NodeKind{
		"function_definition":   KindFunction,
		"method_declaration":    KindFunction,
		"class_declaration":     KindType,
		"interface_declaration": KindType,
		"trait_declaration":     KindType,
		"enum_declaration":      KindType,
		"namespace_definition":  KindModuleStatement,
	},
}
