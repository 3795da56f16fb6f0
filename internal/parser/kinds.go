package parser

import sitter "github.com/smacker/go-tree-sitter"

// NodeKind is the coarse structural category of a syntax node.
type NodeKind int

const (
	// KindOther is any node that is not a structural declaration.
	KindOther NodeKind = iota
	// KindFunction is a named function, method or constructor.
	KindFunction
	// KindImpl is an implementation block whose subject is a type (Rust impl).
	KindImpl
	// KindType is a type declaration: struct, enum, class, trait, interface.
	KindType
	// KindModule is a module or namespace declaration with a body.
	KindModule
	// KindModuleStatement is a namespace declaration that may stand alone
	// and then scopes the rest of the file (C# file-scoped namespaces, PHP
	// "namespace App;"). With a body it behaves like KindModule.
	KindModuleStatement
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindImpl:
		return "impl"
	case KindType:
		return "type"
	case KindModule:
		return "module"
	case KindModuleStatement:
		return "module_statement"
	default:
		return "other"
	}
}

// grammarSpec describes one language: how to get its grammar and how its
// node types map onto structural kinds.
type grammarSpec struct {
	// symbol is the suffix of the tree_sitter_<symbol> entry point exported
	// by shared grammar libraries.
	symbol  string
	builtin func() *sitter.Language
	kinds   map[string]NodeKind
}

func specFor(lang Language) (grammarSpec, bool) {
	switch lang {
	case Go:
		return goGrammar, true
	case TypeScript:
		return typeScriptGrammar, true
	case JavaScript:
		return javaScriptGrammar, true
	case Python:
		return pythonGrammar, true
	case Rust:
		return rustGrammar, true
	case Java:
		return javaGrammar, true
	case CSharp:
		return cSharpGrammar, true
	case C:
		return cGrammar, true
	case Cpp:
		return cppGrammar, true
	case PHP:
		return phpGrammar, true
	case Kotlin:
		return kotlinGrammar, true
	case Ruby:
		return rubyGrammar, true
	default:
		return grammarSpec{}, false
	}
}

// Classify returns the structural kind of nodeType in the given language.
// Unknown languages and node types are KindOther.
func Classify(lang Language, nodeType string) NodeKind {
	spec, ok := specFor(lang)
	if !ok {
		return KindOther
	}
	return spec.kinds[nodeType]
}

// NodeTypes returns the node types of lang classified as kind.
func NodeTypes(lang Language, kind NodeKind) []string {
	spec, ok := specFor(lang)
	if !ok {
		return nil
	}
	types := make([]string, 0, len(spec.kinds))
	for nodeType, k := range spec.kinds {
		if k == kind {
			types = append(types, nodeType)
		}
	}
	return types
}
