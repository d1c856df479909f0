// Package normalize provides the rules that turn a query tree built by
// client code into the canonical tree a provider executes.
//
// Deferred queries embedded as constants are resolved first: queries served
// by the provider running the pass are inlined, foreign queries are
// materialized. The descent rules then carry normalization through every
// composite node.
package normalize

import (
	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/expr"
	"github.com/roach88/qnorm/internal/visit"
)

// Rules returns the default rule list in resolution order.
func Rules() []visit.Registration {
	return []visit.Registration{
		visit.OnConstant("constant-resolver", ConstantResolver{}),
		visit.OnConstant("repository-resolver", RepositoryResolver{}),
		visit.OnSelection("selection-descent", SelectionDescent{}),
		visit.OnOrder("order-descent", OrderDescent{}),
		visit.OnProjection("projection-descent", ProjectionDescent{}),
		visit.OnComparison("comparison-descent", ComparisonDescent{}),
		visit.OnConjunction("conjunction-descent", ConjunctionDescent{}),
	}
}

// NewEngine returns an engine running Rules. Options may add rules, which
// are tried after the defaults.
func NewEngine(opts ...visit.Option) (*visit.Engine, error) {
	return visit.New(append([]visit.Option{visit.WithRules(Rules()...)}, opts...)...)
}

// Bind returns c extended with provider as the provider running the pass.
// A nil provider leaves c as it is.
func Bind(c *ambient.Context, provider Provider) *ambient.Context {
	if provider == nil {
		return c
	}
	return ambient.With(c, provider)
}

// Normalize runs one pass of the default rules over root on behalf of
// provider.
func Normalize(root expr.Node, provider Provider, opts ...visit.Option) (expr.Node, error) {
	e, err := NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return e.Normalize(root, Bind(nil, provider))
}
