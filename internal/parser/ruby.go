package parser

import "github.com/smacker/go-tree-sitter/ruby"

// rubyGrammar treats Ruby modules as modules: they namespace the constants
// and methods inside them the same way Rust mod items do.
var rubyGrammar = grammarSpec{
	symbol:  "ruby",
	builtin: ruby.GetLanguage,
	kinds: map[string]NodeKind{
		"method":           KindFunction,
		"singleton_method": KindFunction,
		"class":            KindType,
		"singleton_class":  KindType,
		"module":           KindModule,
	},
}
