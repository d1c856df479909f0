package expr

import (
	"slices"
	"strings"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/ir"
)

// ProjectionNode is the erased view of Projection[E].
type ProjectionNode interface {
	Node
	Input() Node
	Fields() []string
	WithInput(input Node) (Node, error)
}

// Projection keeps only the named fields of each entity of its source,
// producing one Row per entity.
type Projection[E any] struct {
	source Expression[Sequence[E]]
	fields []string
}

// NewProjection returns source projected onto fields. Fields must be
// non-empty, non-blank and distinct; their order is the column order.
func NewProjection[E any](source Expression[Sequence[E]], fields ...string) (*Projection[E], error) {
	if source == nil {
		return nil, missing(KindProjection, "source")
	}
	if len(fields) == 0 {
		return nil, missing(KindProjection, "fields")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return nil, invalid(KindProjection, "fields", "must not contain blank names")
		}
		if seen[f] {
			return nil, invalid(KindProjection, "fields", "duplicate %q", f)
		}
		seen[f] = true
	}
	return &Projection[E]{source: source, fields: slices.Clone(fields)}, nil
}

func (*Projection[E]) Kind() Kind { return KindProjection }
func (*Projection[E]) denotes(Sequence[Row]) {}
func (*Projection[E]) ResultType() string { return typeName[Sequence[Row]]() }

func (p *Projection[E]) Source() Expression[Sequence[E]] { return p.source }
func (p *Projection[E]) Input() Node { return p.source }
func (p *Projection[E]) Fields() []string { return slices.Clone(p.fields) }

func (p *Projection[E]) WithInput(input Node) (Node, error) {
	if same(input, p.source) {
		return p, nil
	}
	source, err := expect[Sequence[E]](KindProjection, "source", input)
	if err != nil {
		return nil, err
	}
	return NewProjection(source, p.fields...)
}

func (p *Projection[E]) Accept(v Visitor, c *ambient.Context) (Node, error) {
	return v.VisitProjection(p, c)
}

func (p *Projection[E]) Equal(other Node) bool {
	o, ok := other.(*Projection[E])
	if !ok {
		return false
	}
	return p == o || (slices.Equal(p.fields, o.fields) && p.source.Equal(o.source))
}

func (p *Projection[E]) Describe() ir.IRObject {
	fields := make(ir.IRArray, len(p.fields))
	for i, f := range p.fields {
		fields[i] = ir.IRString(f)
	}
	return ir.IRObject{
		"kind":   ir.IRString(KindProjection.String()),
		"source": p.source.Describe(),
		"fields": fields,
	}
}
