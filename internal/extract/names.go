package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Resolve turns a located chain into an Info record. It never fails; names
// that cannot be determined are left empty.
func Resolve(c Chain, source []byte, p Profile) Info {
	function := ResolveFunctionName(c.Function, source, p)
	class := ResolveTypeName(c.Impl, c.Type, c.Function, source, p)
	module := ResolveModulePath(c.Modules, source, p)

	info := Info{
		FunctionName: Qualify(class, function),
		ClassName:    class,
		ModuleName:   module,
		Extra:        diagnostics(c),
	}
	if module != "" {
		info.Extra[ExtraModuleSource] = ModuleFromAST
	}
	return info
}

// ResolveFunctionName returns the declared name of a function node. Without
// a name field it falls back to the first identifier among the node's named
// children.
func ResolveFunctionName(node *sitter.Node, source []byte, p Profile) string {
	if node == nil {
		return ""
	}
	if p.FunctionName != nil {
		if name := p.FunctionName(node, source); name != "" {
			return name
		}
	}
	if name := node.ChildByFieldName(p.nameField()); name != nil {
		return strings.TrimSpace(name.Content(source))
	}
	return firstChildOfKind(node, p.identifierKinds(), source)
}

// ResolveTypeName returns the enclosing type's name. An implementation
// block's subject wins over a type declaration, since a method inside
// impl Foo { } belongs to Foo even when a type is declared closer in.
// Functions with a receiver (Go methods) use the receiver type when no
// implementation block encloses them.
func ResolveTypeName(impl, typeDecl, function *sitter.Node, source []byte, p Profile) string {
	var name string

	if impl != nil {
		if subject := impl.ChildByFieldName(p.implSubjectField()); subject != nil {
			name = subject.Content(source)
		}
	}
	if name == "" && function != nil && p.ReceiverType != nil {
		name = p.ReceiverType(function, source)
	}
	if name == "" && typeDecl != nil {
		if n := typeDecl.ChildByFieldName(p.nameField()); n != nil {
			name = n.Content(source)
		} else {
			name = firstChildOfKind(typeDecl, p.typeIdentifierKinds(), source)
		}
	}

	return StripGenerics(name)
}

// ResolveModulePath joins module declarations, given innermost first, into
// an outermost-first path. Modules without a name are skipped.
func ResolveModulePath(modules []*sitter.Node, source []byte, p Profile) string {
	names := make([]string, 0, len(modules))
	for i := len(modules) - 1; i >= 0; i-- {
		n := modules[i].ChildByFieldName(p.nameField())
		if n == nil {
			continue
		}
		if name := strings.TrimSpace(n.Content(source)); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, Separator)
}

// Qualify prefixes function with typeName unless either is empty or the
// function name is already qualified.
func Qualify(typeName, function string) string {
	if typeName == "" || function == "" || strings.Contains(function, Separator) {
		return function
	}
	return typeName + Separator + function
}

// StripGenerics cuts a type name at the first '<'. This is a textual
// heuristic: Container<T, U> becomes Container, and any other '<' is
// treated the same way.
func StripGenerics(name string) string {
	if idx := strings.IndexByte(name, '<'); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

func firstChildOfKind(node *sitter.Node, kinds []string, source []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		for _, kind := range kinds {
			if child.Type() == kind {
				return strings.TrimSpace(child.Content(source))
			}
		}
	}
	return ""
}
