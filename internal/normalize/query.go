package normalize

import (
	"github.com/roach88/qnorm/internal/expr"
	"github.com/roach88/qnorm/internal/ir"
)

// Provider executes expression trees against some backend.
//
// Providers are compared by identity. A provider whose value cannot be
// compared with == is treated as foreign to every pass, so its queries are
// always executed rather than inlined.
type Provider interface {
	// Name identifies the provider in logs and descriptions.
	Name() string

	// Execute evaluates n and returns its result. For a tree denoting
	// Sequence[E] the result must be an expr.Sequence[E].
	Execute(n expr.Node) (any, error)
}

// Queryable is a deferred query: an expression bound to the provider that
// will execute it.
type Queryable interface {
	Provider() Provider
	Expression() expr.Node
}

// Rooted is a Queryable that reads a named source directly.
type Rooted interface {
	Queryable
	SourceNode() expr.SourceNode
}

// Query is a deferred query producing Sequence[E].
type Query[E any] struct {
	provider   Provider
	expression expr.Expression[expr.Sequence[E]]
}

// NewQuery binds expression to provider.
func NewQuery[E any](provider Provider, expression expr.Expression[expr.Sequence[E]]) (*Query[E], error) {
	if provider == nil {
		return nil, &expr.ConstructionError{Node: "query", Field: "provider", Reason: "is required"}
	}
	if expression == nil {
		return nil, &expr.ConstructionError{Node: "query", Field: "expression", Reason: "is required"}
	}
	return &Query[E]{provider: provider, expression: expression}, nil
}

func (q *Query[E]) Provider() Provider { return q.provider }
func (q *Query[E]) Expression() expr.Node { return q.expression }

// Embed returns a constant node deferring to q.
func (q *Query[E]) Embed() *expr.Constant[expr.Sequence[E]] {
	c, _ := expr.Wrap[expr.Sequence[E]](q)
	return c
}

func (q *Query[E]) Describe() ir.IRObject {
	return ir.IRObject{
		"kind":       ir.IRString("query"),
		"provider":   ir.IRString(q.provider.Name()),
		"expression": q.expression.Describe(),
	}
}

// Repository is the root queryable of a named source. Its expression is a
// constant wrapping the repository itself.
type Repository[E any] struct {
	provider Provider
	source   *expr.Source[E]
	self     *expr.Constant[expr.Sequence[E]]
}

// NewRepository returns the repository of source name served by provider.
func NewRepository[E any](provider Provider, name string) (*Repository[E], error) {
	if provider == nil {
		return nil, &expr.ConstructionError{Node: "repository", Field: "provider", Reason: "is required"}
	}
	src, err := expr.NewSource[E](name)
	if err != nil {
		return nil, err
	}

	r := &Repository[E]{provider: provider, source: src}
	r.self, err = expr.Wrap[expr.Sequence[E]](r)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository[E]) Provider() Provider { return r.provider }
func (r *Repository[E]) Expression() expr.Node { return r.self }
func (r *Repository[E]) Source() *expr.Source[E] { return r.source }
func (r *Repository[E]) SourceNode() expr.SourceNode { return r.source }

// Embed returns the constant node standing for the repository.
func (r *Repository[E]) Embed() *expr.Constant[expr.Sequence[E]] { return r.self }

// Describe names the source instead of the expression, which refers back to
// r.
func (r *Repository[E]) Describe() ir.IRObject {
	return ir.IRObject{
		"kind":     ir.IRString("repository"),
		"provider": ir.IRString(r.provider.Name()),
		"source":   r.source.Describe(),
	}
}
