package extract

import (
	"github.com/snipkit/clipctx/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Classifier maps a node type to its structural kind.
type Classifier func(nodeType string) parser.NodeKind

// Link is one ancestor in a Chain.
type Link struct {
	Node *sitter.Node
	Kind parser.NodeKind
}

// Chain is the request-scoped ancestry of a located node, leaf first.
// It holds references into the tree and must not outlive the request.
type Chain struct {
	Links []Link

	// Function, Impl and Type are the innermost node of each kind, or nil.
	Function *sitter.Node
	Impl     *sitter.Node
	Type     *sitter.Node
	// Modules holds every enclosing module declaration, innermost first.
	Modules []*sitter.Node
}

// Leaf returns the located node, or nil for an empty chain.
func (c Chain) Leaf() *sitter.Node {
	if len(c.Links) == 0 {
		return nil
	}
	return c.Links[0].Node
}

// Locate finds the deepest named node spanning [start, end] and classifies
// every node from there up to the root. A position past the end of the file
// resolves to the root.
func Locate(root *sitter.Node, start, end sitter.Point, classify Classifier) Chain {
	var chain Chain
	if root == nil {
		return chain
	}

	if pointLess(end, start) {
		start, end = end, start
	}

	leaf := root
	last := root.EndPoint()
	if !pointLess(last, start) {
		if pointLess(last, end) {
			end = last
		}
		if found := root.NamedDescendantForPointRange(start, end); found != nil {
			leaf = found
		}
	}

	for node := leaf; node != nil; node = node.Parent() {
		kind := parser.KindOther
		// Keywords are anonymous nodes and can share a type name with the
		// declaration they introduce (Ruby "class", "module").
		if node.IsNamed() {
			kind = classify(node.Type())
		}
		chain.Links = append(chain.Links, Link{Node: node, Kind: kind})

		switch kind {
		case parser.KindFunction:
			if chain.Function == nil {
				chain.Function = node
			}
		case parser.KindImpl:
			if chain.Impl == nil {
				chain.Impl = node
			}
		case parser.KindType:
			if chain.Type == nil {
				chain.Type = node
			}
		case parser.KindModule, parser.KindModuleStatement:
			chain.Modules = append(chain.Modules, node)
		}
	}

	if stmt := moduleStatement(root, start, classify); stmt != nil {
		chain.Modules = append(chain.Modules, stmt)
	}
	return chain
}

// moduleStatement returns the last bodiless namespace statement among the
// root's children that ends at or before pos, such as C# "namespace A.B;"
// or PHP "namespace App\Http;". It scopes everything after it in the file.
func moduleStatement(root *sitter.Node, pos sitter.Point, classify Classifier) *sitter.Node {
	var found *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		if pointLess(pos, child.EndPoint()) {
			break
		}
		if classify(child.Type()) == parser.KindModuleStatement && child.ChildByFieldName("body") == nil {
			found = child
		}
	}
	return found
}

func pointLess(a, b sitter.Point) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Column < b.Column
}
