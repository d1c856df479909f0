package normalize

import (
	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/expr"
	"github.com/roach88/qnorm/internal/visit"
)

// The descent rules normalize every child of a composite node and rebuild
// the node only when a child changed. They accept every node of their
// variant, so they belong after any rule that rewrites that variant.

type SelectionDescent struct{}

func (SelectionDescent) Accepts(expr.SelectionNode) bool { return true }

func (SelectionDescent) Visit(n expr.SelectionNode, c *ambient.Context, s *visit.Scope) (expr.Node, error) {
	input, err := s.VisitInner(n.Input(), c)
	if err != nil {
		return nil, err
	}
	condition, err := s.VisitInner(n.Condition(), c)
	if err != nil {
		return nil, err
	}
	return n.WithChildren(input, condition)
}

type OrderDescent struct{}

func (OrderDescent) Accepts(expr.OrderNode) bool { return true }

func (OrderDescent) Visit(n expr.OrderNode, c *ambient.Context, s *visit.Scope) (expr.Node, error) {
	input, err := s.VisitInner(n.Input(), c)
	if err != nil {
		return nil, err
	}
	return n.WithInput(input)
}

type ProjectionDescent struct{}

func (ProjectionDescent) Accepts(expr.ProjectionNode) bool { return true }

func (ProjectionDescent) Visit(n expr.ProjectionNode, c *ambient.Context, s *visit.Scope) (expr.Node, error) {
	input, err := s.VisitInner(n.Input(), c)
	if err != nil {
		return nil, err
	}
	return n.WithInput(input)
}

type ComparisonDescent struct{}

func (ComparisonDescent) Accepts(*expr.Comparison) bool { return true }

func (ComparisonDescent) Visit(n *expr.Comparison, c *ambient.Context, s *visit.Scope) (expr.Node, error) {
	operand, err := s.VisitInner(n.Operand(), c)
	if err != nil {
		return nil, err
	}
	out, err := n.WithOperand(operand)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ConjunctionDescent struct{}

func (ConjunctionDescent) Accepts(*expr.Conjunction) bool { return true }

func (ConjunctionDescent) Visit(n *expr.Conjunction, c *ambient.Context, s *visit.Scope) (expr.Node, error) {
	terms := n.Terms()
	for i, term := range terms {
		out, err := s.VisitInner(term, c)
		if err != nil {
			return nil, err
		}
		terms[i] = out
	}
	return n.WithTerms(terms)
}
