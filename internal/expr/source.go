package expr

import (
	"strings"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/ir"
)

// SourceNode is the erased view of Source[E].
type SourceNode interface {
	Node
	Name() string
}

// Source is a named set of entities, the leaf every query starts from.
type Source[E any] struct {
	name string
}

// NewSource returns the entity set called name.
func NewSource[E any](name string) (*Source[E], error) {
	if strings.TrimSpace(name) == "" {
		return nil, missing(KindSource, "name")
	}
	return &Source[E]{name: name}, nil
}

func (*Source[E]) Kind() Kind { return KindSource }
func (*Source[E]) denotes(Sequence[E]) {}
func (*Source[E]) ResultType() string { return typeName[Sequence[E]]() }

func (s *Source[E]) Name() string { return s.name }

func (s *Source[E]) Accept(v Visitor, c *ambient.Context) (Node, error) {
	return v.VisitSource(s, c)
}

func (s *Source[E]) Equal(other Node) bool {
	o, ok := other.(*Source[E])
	return ok && o.name == s.name
}

func (s *Source[E]) Describe() ir.IRObject {
	return ir.IRObject{
		"kind": ir.IRString(KindSource.String()),
		"name": ir.IRString(s.name),
	}
}
