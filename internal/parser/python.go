package parser

import "github.com/smacker/go-tree-sitter/python"

var pythonGrammar = grammarSpec{
	symbol:  "python",
	builtin: python.GetLanguage,
	kinds: map[string]NodeKind{
		"function_definition": KindFunction,
		"class_definition":    KindType,
	},
}
