package expr

import (
	"github.com/roach88/qnorm/internal/ir"
)

var errNoRoot = &ConstructionError{Node: "tree", Field: "root", Reason: "is required"}

// Fingerprint returns a content hash of the tree rooted at n. Structurally
// equal trees have equal fingerprints.
func Fingerprint(n Node) (string, error) {
	if n == nil {
		return "", errNoRoot
	}
	return ir.Hash(ir.DomainNode, n.Describe())
}

// MarshalCanonical returns the canonical JSON description of the tree.
func MarshalCanonical(n Node) ([]byte, error) {
	if n == nil {
		return nil, errNoRoot
	}
	return ir.MarshalCanonical(n.Describe())
}

// Walk calls fn for n and then for each of its children, depth first. It
// stops descending below a node when fn returns false for it.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Children returns the direct child nodes of n.
func Children(n Node) []Node {
	switch v := n.(type) {
	case SelectionNode:
		return []Node{v.Input(), v.Condition()}
	case OrderNode:
		return []Node{v.Input()}
	case ProjectionNode:
		return []Node{v.Input()}
	case *Comparison:
		return []Node{v.Operand()}
	case *Conjunction:
		return v.Terms()
	default:
		return nil
	}
}
