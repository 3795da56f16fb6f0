package extract

import (
	"strings"

	"github.com/snipkit/clipctx/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Profile holds the per-language knobs the name resolvers need. The zero
// value works for grammars that use a "name" field everywhere.
type Profile struct {
	Language parser.Language

	// NameField is the field holding a declaration's name. Defaults to "name".
	NameField string
	// ImplSubjectField is the field holding an implementation block's subject
	// type. Defaults to "type".
	ImplSubjectField string
	// IdentifierKinds are scanned, in order, among a function's named
	// children when it has no name field.
	IdentifierKinds []string
	// TypeIdentifierKinds are scanned among a type declaration's named
	// children when it has no name field.
	TypeIdentifierKinds []string

	// FunctionName overrides name lookup for grammars that bury the name,
	// such as C declarators. An empty result falls through to the defaults.
	FunctionName func(node *sitter.Node, source []byte) string
	// ReceiverType reports the type a function is attached to outside of any
	// type body, such as a Go method receiver.
	ReceiverType func(node *sitter.Node, source []byte) string
}

var (
	defaultIdentifierKinds = []string{
		"identifier", "field_identifier", "property_identifier",
		"simple_identifier", "name", "constant",
	}
	defaultTypeIdentifierKinds = []string{"type_identifier", "identifier", "constant", "name"}
)

func (p Profile) nameField() string {
	if p.NameField == "" {
		return "name"
	}
	return p.NameField
}

func (p Profile) implSubjectField() string {
	if p.ImplSubjectField == "" {
		return "type"
	}
	return p.ImplSubjectField
}

func (p Profile) identifierKinds() []string {
	if len(p.IdentifierKinds) == 0 {
		return defaultIdentifierKinds
	}
	return p.IdentifierKinds
}

func (p Profile) typeIdentifierKinds() []string {
	if len(p.TypeIdentifierKinds) == 0 {
		return defaultTypeIdentifierKinds
	}
	return p.TypeIdentifierKinds
}

// ProfileFor returns the profile for lang. Unknown languages get the
// defaults.
func ProfileFor(lang parser.Language) Profile {
	p := Profile{Language: lang}
	switch lang {
	case parser.Go:
		p.ReceiverType = goReceiverType
	case parser.C, parser.Cpp:
		p.FunctionName = declaratorName
	case parser.Kotlin:
		p.IdentifierKinds = []string{"simple_identifier"}
		p.TypeIdentifierKinds = []string{"type_identifier", "simple_identifier"}
	case parser.TypeScript, parser.JavaScript:
		p.IdentifierKinds = []string{"identifier", "property_identifier", "private_property_identifier"}
	}
	return p
}

// goReceiverType returns the receiver type of a method declaration with the
// pointer and type parameters removed: (s *Stack[T]) gives Stack.
func goReceiverType(node *sitter.Node, source []byte) string {
	if node.Type() != "method_declaration" {
		return ""
	}
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		param := recv.NamedChild(i)
		if param == nil || param.Type() != "parameter_declaration" {
			continue
		}
		typ := param.ChildByFieldName("type")
		if typ == nil {
			continue
		}
		name := strings.TrimLeft(strings.TrimSpace(typ.Content(source)), "*")
		if idx := strings.IndexByte(name, '['); idx >= 0 {
			name = name[:idx]
		}
		return strings.TrimSpace(name)
	}
	return ""
}

// declaratorName digs the identifier out of a C or C++ function definition.
// The name sits at the bottom of a declarator chain that may pass through
// pointer and reference declarators. Qualified C++ names (Widget::draw) are
// returned whole.
func declaratorName(node *sitter.Node, source []byte) string {
	decl := node.ChildByFieldName("declarator")
	for depth := 0; decl != nil && depth < 16; depth++ {
		switch decl.Type() {
		case "identifier", "field_identifier", "qualified_identifier", "scoped_identifier",
			"destructor_name", "operator_name":
			return strings.TrimSpace(decl.Content(source))
		}
		next := decl.ChildByFieldName("declarator")
		if next == nil && decl.NamedChildCount() > 0 {
			// reference_declarator has no declarator field.
			next = decl.NamedChild(int(decl.NamedChildCount()) - 1)
		}
		decl = next
	}
	return ""
}
