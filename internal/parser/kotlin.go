package parser

import "github.com/smacker/go-tree-sitter/kotlin"

var kotlinGrammar = grammarSpec{
	symbol:  "kotlin",
	builtin: kotlin.GetLanguage,
	kinds: map[string]NodeKind{
		"function_declaration":  KindFunction,
		"secondary_constructor": KindFunction,
		"class_declaration":     KindType,
		"object_declaration":    KindType,
	},
}
