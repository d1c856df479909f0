package normalize

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/expr"
	"github.com/roach88/qnorm/internal/visit"
)

var errNoProvider = errors.New("queryable has no provider")

// ConstantResolver replaces a constant wrapping a Queryable with either the
// query's own expression or the result of executing it.
//
// The provider running the current pass must be bound in the context. A
// query served by that provider is inlined so the backend sees one tree.
// A query served by any other provider is executed on its own provider and
// embedded as a literal of the constant's result type, including when it
// sits directly behind a query of the current provider.
type ConstantResolver struct{}

func (ConstantResolver) Accepts(n expr.ConstantNode) bool {
	_, ok := n.Value().(Queryable)
	return ok
}

func (ConstantResolver) Visit(n expr.ConstantNode, c *ambient.Context, s *visit.Scope) (expr.Node, error) {
	current, err := currentProvider(c)
	if err != nil {
		return nil, err
	}
	query := n.Value().(Queryable)
	if query.Provider() == nil {
		return nil, errNoProvider
	}

	if !sameProvider(query.Provider(), current) {
		return materialize(n, query, current, s)
	}

	inner := query.Expression()
	if inner.Kind() != expr.KindConstant {
		return s.VisitInner(inner, c)
	}
	// A repository's expression is a constant like n.
	if constant, ok := inner.(expr.ConstantNode); ok {
		if nested, ok := constant.Value().(Queryable); ok {
			if nested.Provider() == nil {
				return nil, errNoProvider
			}
			if !sameProvider(nested.Provider(), current) {
				return materialize(n, nested, current, s)
			}
		}
	}
	return s.ContinueVisit(inner, c)
}

// RepositoryResolver replaces a constant wrapping a Rooted queryable of the
// current provider with its source node. A repository of another provider
// is executed there instead.
type RepositoryResolver struct{}

func (RepositoryResolver) Accepts(n expr.ConstantNode) bool {
	_, ok := n.Value().(Rooted)
	return ok
}

func (RepositoryResolver) Visit(n expr.ConstantNode, c *ambient.Context, s *visit.Scope) (expr.Node, error) {
	current, err := currentProvider(c)
	if err != nil {
		return nil, err
	}
	repo := n.Value().(Rooted)
	if repo.Provider() == nil {
		return nil, errNoProvider
	}
	if !sameProvider(repo.Provider(), current) {
		return materialize(n, repo, current, s)
	}
	return repo.SourceNode(), nil
}

// currentProvider returns the provider running the pass. A nil binding
// counts as missing.
func currentProvider(c *ambient.Context) (Provider, error) {
	current, err := ambient.Require[Provider](c)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &ambient.MissingStateError{Capability: ambient.CapabilityName[Provider]()}
	}
	return current, nil
}

// materialize executes query on its own provider and rebinds n to the
// result.
func materialize(n expr.ConstantNode, query Queryable, current Provider, s *visit.Scope) (expr.Node, error) {
	foreign := query.Provider()
	s.Logger().Debug("materializing foreign query",
		"pass_id", s.PassID(),
		"rule", s.Rule(),
		"provider", foreign.Name(),
		"current", current.Name(),
	)

	result, err := foreign.Execute(query.Expression())
	if err != nil {
		return nil, fmt.Errorf("execute on provider %s: %w", foreign.Name(), err)
	}
	return n.Rebind(result)
}

// sameProvider reports whether a and b are the same provider. Providers
// whose dynamic values cannot be compared are never the same as anything.
func sameProvider(a, b Provider) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
