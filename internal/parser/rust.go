package parser

import "github.com/smacker/go-tree-sitter/rust"

// rustGrammar classifies Rust items. Closures are deliberately absent so a
// cursor inside a closure reports the named function around it.
var rustGrammar = grammarSpec{
	symbol:  "rust",
	builtin: rust.GetLanguage,
	kinds: map[string]NodeKind{
		"function_item":           KindFunction,
		"function_signature_item": KindFunction, // trait and extern declarations
		"impl_item":               KindImpl,
		"struct_item":             KindType,
		"enum_item":               KindType,
		"union_item":              KindType,
		"trait_item":              KindType,
		"type_item":               KindType,
		"mod_item":                KindModule,
	},
}
