package harness

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/roach88/qnorm/internal/expr"
	"github.com/roach88/qnorm/internal/ir"
	"github.com/roach88/qnorm/internal/normalize"
	"github.com/roach88/qnorm/internal/testutil"
)

// Rows is the result type of every set-valued scenario node.
type Rows = expr.Sequence[expr.Row]

// builder turns node specs into expression trees. Scenario entities are
// rows, so every set-valued node is an Expression[Rows].
type builder struct {
	providers    map[string]*testutil.Provider
	repositories map[string]*normalize.Repository[expr.Row]
}

func newBuilder(specs []ProviderSpec) (*builder, error) {
	b := &builder{
		providers:    make(map[string]*testutil.Provider, len(specs)),
		repositories: make(map[string]*normalize.Repository[expr.Row]),
	}
	for _, spec := range specs {
		p := testutil.NewProvider(spec.Name)
		if spec.Error != "" {
			p.Fails(errors.New(spec.Error))
		} else {
			rows, err := toRows(spec.Rows)
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", spec.Name, err)
			}
			p.Returns(rows)
		}
		b.providers[spec.Name] = p
	}
	return b, nil
}

// provider returns the named provider, or nil for "".
func (b *builder) provider(name string) normalize.Provider {
	if p, ok := b.providers[name]; ok {
		return p
	}
	return nil
}

// repository returns one repository instance per provider and source name,
// so every mention of it in a scenario embeds the same constant.
func (b *builder) repository(provider, name string) (*normalize.Repository[expr.Row], error) {
	key := provider + "/" + name
	if r, ok := b.repositories[key]; ok {
		return r, nil
	}
	r, err := normalize.NewRepository[expr.Row](b.provider(provider), name)
	if err != nil {
		return nil, err
	}
	b.repositories[key] = r
	return r, nil
}

// BuildError reports a node spec that could not be turned into a node.
type BuildError struct {
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// build wraps the first failure with the path of the node that caused it.
func (b *builder) build(path string, n *NodeSpec) (expr.Node, error) {
	node, err := b.buildNode(path, n)
	if err != nil {
		var be *BuildError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, &BuildError{Path: path, Err: err}
	}
	return node, nil
}

func (b *builder) buildNode(path string, n *NodeSpec) (expr.Node, error) {
	switch n.Kind {
	case NodeSource:
		return expr.NewSource[expr.Row](n.Name)

	case NodeRepository:
		r, err := b.repository(n.Provider, n.Name)
		if err != nil {
			return nil, err
		}
		return r.Embed(), nil

	case NodeQuery:
		input, err := b.set(path+".input", n.Input)
		if err != nil {
			return nil, err
		}
		q, err := normalize.NewQuery[expr.Row](b.provider(n.Provider), input)
		if err != nil {
			return nil, err
		}
		return q.Embed(), nil

	case NodeConstant:
		if n.Rows != nil {
			rows, err := toRows(n.Rows)
			if err != nil {
				return nil, err
			}
			return expr.NewConstant(rows), nil
		}
		return scalarConstant(n.Value)

	case NodeSelection:
		input, err := b.set(path+".input", n.Input)
		if err != nil {
			return nil, err
		}
		where, err := b.predicate(path+".where", n.Where)
		if err != nil {
			return nil, err
		}
		return expr.NewSelection[expr.Row](input, where)

	case NodeOrder:
		input, err := b.set(path+".input", n.Input)
		if err != nil {
			return nil, err
		}
		var criterion *expr.OrderCriterion[expr.Row]
		for _, key := range n.By {
			next, err := expr.NewOrderCriterion[expr.Row](expr.SortKey{Field: key.Field, Descending: key.Desc})
			if err != nil {
				return nil, err
			}
			if criterion == nil {
				criterion = next
			} else {
				criterion = criterion.Chain(next)
			}
		}
		return expr.NewOrder[expr.Row](input, criterion)

	case NodeProjection:
		input, err := b.set(path+".input", n.Input)
		if err != nil {
			return nil, err
		}
		return expr.NewProjection[expr.Row](input, n.Fields...)

	case NodeCompare:
		operand, err := b.build(path+".operand", n.Operand)
		if err != nil {
			return nil, err
		}
		return expr.NewComparison(n.Field, expr.Operator(n.Op), operand)

	case NodeAnd:
		terms := make([]expr.Expression[bool], len(n.Terms))
		for i, spec := range n.Terms {
			term, err := b.predicate(fmt.Sprintf("%s.terms[%d]", path, i), spec)
			if err != nil {
				return nil, err
			}
			terms[i] = term
		}
		return expr.NewConjunction(terms...)
	}

	return nil, fmt.Errorf("unknown kind %q", n.Kind)
}

func (b *builder) set(path string, n *NodeSpec) (expr.Expression[Rows], error) {
	node, err := b.build(path, n)
	if err != nil {
		return nil, err
	}
	set, ok := node.(expr.Expression[Rows])
	if !ok {
		return nil, &BuildError{Path: path, Err: fmt.Errorf("%s does not denote a set of rows", node.Kind())}
	}
	return set, nil
}

func (b *builder) predicate(path string, n *NodeSpec) (expr.Expression[bool], error) {
	node, err := b.build(path, n)
	if err != nil {
		return nil, err
	}
	pred, ok := node.(expr.Expression[bool])
	if !ok {
		return nil, &BuildError{Path: path, Err: fmt.Errorf("%s is not a predicate", node.Kind())}
	}
	return pred, nil
}

// scalarConstant types a decoded scalar: strings, integers and bools map to
// string, int64 and bool constants; lists map to ir.IRArray constants.
func scalarConstant(v any) (expr.Node, error) {
	value, err := toIR(v)
	if err != nil {
		return nil, err
	}
	switch val := value.(type) {
	case ir.IRString:
		return expr.NewConstant(string(val)), nil
	case ir.IRInt:
		return expr.NewConstant(int64(val)), nil
	case ir.IRBool:
		return expr.NewConstant(bool(val)), nil
	case ir.IRArray:
		return expr.NewConstant(val), nil
	}
	return nil, fmt.Errorf("unsupported constant value %T", v)
}

func toRows(specs []map[string]any) (Rows, error) {
	rows := make(Rows, len(specs))
	for i, spec := range specs {
		v, err := toIR(spec)
		if err != nil {
			return nil, fmt.Errorf("rows[%d]: %w", i, err)
		}
		rows[i] = v.(ir.IRObject)
	}
	return rows, nil
}

// toIR converts decoded YAML or CUE data. Numbers must be integers; CUE may
// hand them over as float64 or *big.Int.
func toIR(v any) (ir.IRValue, error) {
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) || val < math.MinInt64 || val >= math.MaxInt64 {
			return nil, fmt.Errorf("number %v is not an int64", val)
		}
		return ir.IRInt(int64(val)), nil
	case *big.Int:
		if !val.IsInt64() {
			return nil, fmt.Errorf("number %s is not an int64", val)
		}
		return ir.IRInt(val.Int64()), nil
	case []any:
		arr := make(ir.IRArray, len(val))
		for i, elem := range val {
			converted, err := toIR(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		obj := make(ir.IRObject, len(val))
		for k, elem := range val {
			converted, err := toIR(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = converted
		}
		return obj, nil
	}
	return ir.FromGo(v)
}
