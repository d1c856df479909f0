package visit

import (
	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/expr"
)

// Rule rewrites nodes of the variant N it is registered for.
type Rule[N expr.Node] interface {
	// Accepts is the instance-level match. The engine only offers nodes
	// of variant N, so Accepts inspects contents, not types.
	Accepts(n N) bool

	// Visit returns the replacement for n. Returning n itself means
	// "unchanged". Recursion into other nodes goes through s.
	Visit(n N, c *ambient.Context, s *Scope) (expr.Node, error)
}

// Funcs adapts a pair of functions to a Rule. A nil AcceptsFunc accepts
// every node of the variant.
type Funcs[N expr.Node] struct {
	AcceptsFunc func(n N) bool
	VisitFunc   func(n N, c *ambient.Context, s *Scope) (expr.Node, error)
}

func (f Funcs[N]) Accepts(n N) bool {
	if f.AcceptsFunc == nil {
		return true
	}
	return f.AcceptsFunc(n)
}

func (f Funcs[N]) Visit(n N, c *ambient.Context, s *Scope) (expr.Node, error) {
	return f.VisitFunc(n, c, s)
}

// Registration binds a named rule to the variant it handles.
// Build one with OnConstant, OnSource, OnSelection, OnOrder, OnProjection,
// OnComparison or OnConjunction.
type Registration struct {
	name    string
	kind    expr.Kind
	binding any
	valid   bool
}

// Name returns the rule's name.
func (r Registration) Name() string { return r.name }

// Kind returns the variant the rule handles.
func (r Registration) Kind() expr.Kind { return r.kind }

func register[N expr.Node](name string, kind expr.Kind, rule Rule[N]) Registration {
	return Registration{
		name:    name,
		kind:    kind,
		binding: rule,
		valid:   rule != nil,
	}
}

// OnConstant registers a rule for constant nodes.
func OnConstant(name string, rule Rule[expr.ConstantNode]) Registration {
	return register(name, expr.KindConstant, rule)
}

// OnSource registers a rule for source nodes.
func OnSource(name string, rule Rule[expr.SourceNode]) Registration {
	return register(name, expr.KindSource, rule)
}

// OnSelection registers a rule for selection nodes.
func OnSelection(name string, rule Rule[expr.SelectionNode]) Registration {
	return register(name, expr.KindSelection, rule)
}

// OnOrder registers a rule for order nodes.
func OnOrder(name string, rule Rule[expr.OrderNode]) Registration {
	return register(name, expr.KindOrder, rule)
}

// OnProjection registers a rule for projection nodes.
func OnProjection(name string, rule Rule[expr.ProjectionNode]) Registration {
	return register(name, expr.KindProjection, rule)
}

// OnComparison registers a rule for comparison predicates.
func OnComparison(name string, rule Rule[*expr.Comparison]) Registration {
	return register(name, expr.KindComparison, rule)
}

// OnConjunction registers a rule for conjunction predicates.
func OnConjunction(name string, rule Rule[*expr.Conjunction]) Registration {
	return register(name, expr.KindConjunction, rule)
}
