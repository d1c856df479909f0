package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/ir"
)

// Kind tags the variant of a node.
type Kind uint8

const (
	KindConstant Kind = iota + 1
	KindSource
	KindSelection
	KindOrder
	KindProjection
	KindComparison
	KindConjunction
)

var kindNames = map[Kind]string{
	KindConstant:    "constant",
	KindSource:      "source",
	KindSelection:   "selection",
	KindOrder:       "order",
	KindProjection:  "projection",
	KindComparison:  "comparison",
	KindConjunction: "conjunction",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Node is the type-erased view shared by every expression.
type Node interface {
	// Kind reports the variant.
	Kind() Kind

	// Accept calls the Visitor method for this node's variant and returns
	// the visitor's replacement for the node.
	Accept(v Visitor, c *ambient.Context) (Node, error)

	// Equal reports structural equality.
	Equal(other Node) bool

	// Describe returns the canonical description of the subtree.
	Describe() ir.IRObject

	// ResultType names the Go type the node denotes.
	ResultType() string
}

// Expression is a node denoting a value of type R.
type Expression[R any] interface {
	Node
	denotes(R)
}

// Sequence is the result type of set-valued nodes.
type Sequence[E any] []E

// Items returns the elements as a []any.
func (s Sequence[E]) Items() []any {
	out := make([]any, len(s))
	for i, e := range s {
		out[i] = e
	}
	return out
}

// Row is the element type produced by a Projection.
type Row = ir.IRObject

// Visitor receives nodes through Accept, one method per variant.
type Visitor interface {
	VisitConstant(n ConstantNode, c *ambient.Context) (Node, error)
	VisitSource(n SourceNode, c *ambient.Context) (Node, error)
	VisitSelection(n SelectionNode, c *ambient.Context) (Node, error)
	VisitOrder(n OrderNode, c *ambient.Context) (Node, error)
	VisitProjection(n ProjectionNode, c *ambient.Context) (Node, error)
	VisitComparison(n *Comparison, c *ambient.Context) (Node, error)
	VisitConjunction(n *Conjunction, c *ambient.Context) (Node, error)
}

// typeName returns the printable name of T, including interface types.
func typeName[T any]() string {
	return strings.TrimPrefix(fmt.Sprintf("%T", (*T)(nil)), "*")
}

// same reports whether two nodes are the same instance.
func same(a, b Node) bool {
	return a == b
}
