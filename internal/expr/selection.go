package expr

import (
	"strings"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/ir"
)

// SelectionNode is the erased view of Selection[E].
type SelectionNode interface {
	Node
	Input() Node
	Condition() Node

	// WithChildren returns the selection rebuilt over input and condition.
	WithChildren(input, condition Node) (Node, error)
}

// Selection keeps the entities of its source that satisfy a predicate.
type Selection[E any] struct {
	source    Expression[Sequence[E]]
	predicate Expression[bool]
}

// NewSelection returns source filtered by predicate. Both are required.
func NewSelection[E any](source Expression[Sequence[E]], predicate Expression[bool]) (*Selection[E], error) {
	if source == nil {
		return nil, missing(KindSelection, "source")
	}
	if predicate == nil {
		return nil, missing(KindSelection, "predicate")
	}
	return &Selection[E]{source: source, predicate: predicate}, nil
}

func (*Selection[E]) Kind() Kind { return KindSelection }
func (*Selection[E]) denotes(Sequence[E]) {}
func (*Selection[E]) ResultType() string { return typeName[Sequence[E]]() }

func (s *Selection[E]) Source() Expression[Sequence[E]] { return s.source }
func (s *Selection[E]) Predicate() Expression[bool] { return s.predicate }
func (s *Selection[E]) Input() Node { return s.source }
func (s *Selection[E]) Condition() Node { return s.predicate }

func (s *Selection[E]) WithChildren(input, condition Node) (Node, error) {
	if same(input, s.source) && same(condition, s.predicate) {
		return s, nil
	}
	source, err := expect[Sequence[E]](KindSelection, "source", input)
	if err != nil {
		return nil, err
	}
	predicate, err := expect[bool](KindSelection, "predicate", condition)
	if err != nil {
		return nil, err
	}
	return NewSelection(source, predicate)
}

func (s *Selection[E]) Accept(v Visitor, c *ambient.Context) (Node, error) {
	return v.VisitSelection(s, c)
}

func (s *Selection[E]) Equal(other Node) bool {
	o, ok := other.(*Selection[E])
	if !ok {
		return false
	}
	return s == o || (s.source.Equal(o.source) && s.predicate.Equal(o.predicate))
}

func (s *Selection[E]) Describe() ir.IRObject {
	return ir.IRObject{
		"kind":      ir.IRString(KindSelection.String()),
		"source":    s.source.Describe(),
		"predicate": s.predicate.Describe(),
	}
}

// Operator is a comparison operator.
type Operator string

const (
	OpEq  Operator = "="
	OpNeq Operator = "!="
	OpLt  Operator = "<"
	OpLte Operator = "<="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpIn  Operator = "in"
)

// Valid reports whether op is one of the declared operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIn:
		return true
	}
	return false
}

// Comparison compares an entity field with an operand. The operand is any
// node: usually a literal constant, but an OpIn operand may be a nested query.
type Comparison struct {
	field   string
	op      Operator
	operand Node
}

// NewComparison returns the predicate "field op operand".
func NewComparison(field string, op Operator, operand Node) (*Comparison, error) {
	if strings.TrimSpace(field) == "" {
		return nil, missing(KindComparison, "field")
	}
	if !op.Valid() {
		return nil, invalid(KindComparison, "op", "%q is not an operator", string(op))
	}
	if operand == nil {
		return nil, missing(KindComparison, "operand")
	}
	return &Comparison{field: field, op: op, operand: operand}, nil
}

func (*Comparison) Kind() Kind { return KindComparison }
func (*Comparison) denotes(bool) {}
func (*Comparison) ResultType() string { return "bool" }

func (p *Comparison) Field() string { return p.field }
func (p *Comparison) Op() Operator { return p.op }
func (p *Comparison) Operand() Node { return p.operand }

// WithOperand returns the comparison against operand instead.
func (p *Comparison) WithOperand(operand Node) (*Comparison, error) {
	if same(operand, p.operand) {
		return p, nil
	}
	return NewComparison(p.field, p.op, operand)
}

func (p *Comparison) Accept(v Visitor, c *ambient.Context) (Node, error) {
	return v.VisitComparison(p, c)
}

func (p *Comparison) Equal(other Node) bool {
	o, ok := other.(*Comparison)
	if !ok {
		return false
	}
	return p == o || (p.field == o.field && p.op == o.op && p.operand.Equal(o.operand))
}

func (p *Comparison) Describe() ir.IRObject {
	return ir.IRObject{
		"kind":    ir.IRString(KindComparison.String()),
		"field":   ir.IRString(p.field),
		"op":      ir.IRString(string(p.op)),
		"operand": p.operand.Describe(),
	}
}

// Conjunction holds when every term holds.
type Conjunction struct {
	terms []Expression[bool]
}

// NewConjunction returns the conjunction of terms. At least one is required.
func NewConjunction(terms ...Expression[bool]) (*Conjunction, error) {
	if len(terms) == 0 {
		return nil, missing(KindConjunction, "terms")
	}
	for _, t := range terms {
		if t == nil {
			return nil, invalid(KindConjunction, "terms", "must not contain nil")
		}
	}
	return &Conjunction{terms: append([]Expression[bool](nil), terms...)}, nil
}

func (*Conjunction) Kind() Kind { return KindConjunction }
func (*Conjunction) denotes(bool) {}
func (*Conjunction) ResultType() string { return "bool" }

// Terms returns a copy of the terms.
func (p *Conjunction) Terms() []Node {
	out := make([]Node, len(p.terms))
	for i, t := range p.terms {
		out[i] = t
	}
	return out
}

// WithTerms returns the conjunction of terms, which must all denote bool.
func (p *Conjunction) WithTerms(terms []Node) (Node, error) {
	unchanged := len(terms) == len(p.terms)
	typed := make([]Expression[bool], len(terms))
	for i, t := range terms {
		b, err := expect[bool](KindConjunction, "terms", t)
		if err != nil {
			return nil, err
		}
		typed[i] = b
		if unchanged && !same(t, p.terms[i]) {
			unchanged = false
		}
	}
	if unchanged {
		return p, nil
	}
	return NewConjunction(typed...)
}

func (p *Conjunction) Accept(v Visitor, c *ambient.Context) (Node, error) {
	return v.VisitConjunction(p, c)
}

func (p *Conjunction) Equal(other Node) bool {
	o, ok := other.(*Conjunction)
	if !ok || len(o.terms) != len(p.terms) {
		return false
	}
	for i := range p.terms {
		if !p.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (p *Conjunction) Describe() ir.IRObject {
	terms := make(ir.IRArray, len(p.terms))
	for i, t := range p.terms {
		terms[i] = t.Describe()
	}
	return ir.IRObject{
		"kind":  ir.IRString(KindConjunction.String()),
		"terms": terms,
	}
}
