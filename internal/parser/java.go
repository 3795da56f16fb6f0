package parser

import "github.com/smacker/go-tree-sitter/java"

// javaGrammar has no module kinds: a package declaration does not enclose
// the code after it.
var javaGrammar = grammarSpec{
	symbol:  "java",
	builtin: java.GetLanguage,
	kinds: map[string]NodeKind{
		"method_declaration":          KindFunction,
		"constructor_declaration":     KindFunction,
		"class_declaration":           KindType,
		"interface_declaration":       KindType,
		"enum_declaration":            KindType,
		"record_declaration":          KindType,
		"annotation_type_declaration": KindType,
	},
}
