package parser

import "github.com/smacker/go-tree-sitter/javascript"

// javaScriptGrammar leaves arrow functions and function expressions out:
// they are usually anonymous callbacks inside a named function.
var javaScriptGrammar = grammarSpec{
	symbol:  "javascript",
	builtin: javascript.GetLanguage,
	kinds: map[string]NodeKind{
		"function_declaration":           KindFunction,
		"generator_function_declaration": KindFunction,
		"method_definition":              KindFunction,
		"class_declaration":              KindType,
	},
}
