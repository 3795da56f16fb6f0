package parser

import "github.com/smacker/go-tree-sitter/typescript/typescript"

var typeScriptGrammar = grammarSpec{
	symbol:  "typescript",
	builtin: typescript.GetLanguage,
	kinds: map[string]NodeKind{
		"function_declaration":           KindFunction,
		"generator_function_declaration": KindFunction,
		"function_signature":             KindFunction,
		"method_definition":              KindFunction,
		"method_signature":               KindFunction,
		"abstract_method_signature":      KindFunction,
		"class_declaration":              KindType,
		"abstract_class_declaration":     KindType,
		"interface_declaration":          KindType,
		"enum_declaration":               KindType,
		"type_alias_declaration":         KindType,
		"internal_module":                KindModule, // namespace Foo { }
		"module":                         KindModule, // module Foo { }
	},
}
