package parser

import csharp "github.com/smacker/go-tree-sitter/csharp"

var cSharpGrammar = grammarSpec{
	symbol:  "c_sharp",
	builtin: csharp.GetLanguage,
	kinds: map[string]NodeKind{
		"method_declaration":                KindFunction,
		"constructor_declaration":           KindFunction,
		"destructor_declaration":            KindFunction,
		"local_function_statement":          KindFunction,
		"class_declaration":                 KindType,
		"struct_declaration":                KindType,
		"interface_declaration":             KindType,
		"enum_declaration":                  KindType,
		"record_declaration":                KindType,
		"namespace_declaration":             KindModule,
		"file_scoped_namespace_declaration": KindModuleStatement,
	},
}
