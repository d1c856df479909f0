package expr

import (
	"iter"
	"slices"
	"strings"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/ir"
)

// SortKey is one key of an ordering.
type SortKey struct {
	Field      string
	Descending bool
}

func (k SortKey) describe() ir.IRObject {
	return ir.IRObject{
		"field":      ir.IRString(k.Field),
		"descending": ir.IRBool(k.Descending),
	}
}

// OrderCriterion is an append-only chain of sort keys over E. The first key
// is the primary sort; each later key breaks ties left by the ones before it.
type OrderCriterion[E any] struct {
	keys []SortKey
}

// NewOrderCriterion returns a chain holding key alone.
func NewOrderCriterion[E any](key SortKey) (*OrderCriterion[E], error) {
	if strings.TrimSpace(key.Field) == "" {
		return nil, &ConstructionError{Node: "order criterion", Field: "field", Reason: "is required"}
	}
	return &OrderCriterion[E]{keys: []SortKey{key}}, nil
}

// Ascending returns a single-key ascending chain.
func Ascending[E any](field string) (*OrderCriterion[E], error) {
	return NewOrderCriterion[E](SortKey{Field: field})
}

// Descending returns a single-key descending chain.
func Descending[E any](field string) (*OrderCriterion[E], error) {
	return NewOrderCriterion[E](SortKey{Field: field, Descending: true})
}

// Chain returns a new chain with next's keys after this chain's keys.
// Neither operand is modified. A nil next yields the receiver.
func (c *OrderCriterion[E]) Chain(next *OrderCriterion[E]) *OrderCriterion[E] {
	if next == nil {
		return c
	}
	keys := make([]SortKey, 0, len(c.keys)+len(next.keys))
	keys = append(keys, c.keys...)
	keys = append(keys, next.keys...)
	return &OrderCriterion[E]{keys: keys}
}

// Keys returns a copy of the chain, primary key first.
func (c *OrderCriterion[E]) Keys() []SortKey {
	return slices.Clone(c.keys)
}

// All iterates the chain in tie-break order.
func (c *OrderCriterion[E]) All() iter.Seq[SortKey] {
	return slices.Values(c.keys)
}

// Len returns the number of keys.
func (c *OrderCriterion[E]) Len() int {
	return len(c.keys)
}

// Equal reports whether both chains hold the same keys in the same order.
func (c *OrderCriterion[E]) Equal(other *OrderCriterion[E]) bool {
	return other != nil && slices.Equal(c.keys, other.keys)
}

// OrderNode is the erased view of Order[E].
type OrderNode interface {
	Node
	Input() Node
	SortKeys() []SortKey

	// WithInput returns the ordering applied to input instead.
	WithInput(input Node) (Node, error)
}

// Order sorts its source by a criterion chain.
type Order[E any] struct {
	source    Expression[Sequence[E]]
	criterion *OrderCriterion[E]
}

// NewOrder returns source sorted by criterion. Both are required.
func NewOrder[E any](source Expression[Sequence[E]], criterion *OrderCriterion[E]) (*Order[E], error) {
	if source == nil {
		return nil, missing(KindOrder, "source")
	}
	if criterion == nil {
		return nil, missing(KindOrder, "criterion")
	}
	return &Order[E]{source: source, criterion: criterion}, nil
}

// ThenBy returns a new ordering over the same source with criterion appended
// to the chain as a tie-breaker. The receiver is unchanged.
func (o *Order[E]) ThenBy(criterion *OrderCriterion[E]) (*Order[E], error) {
	if criterion == nil {
		return nil, missing(KindOrder, "criterion")
	}
	return NewOrder(o.source, o.criterion.Chain(criterion))
}

func (*Order[E]) Kind() Kind { return KindOrder }
func (*Order[E]) denotes(Sequence[E]) {}
func (*Order[E]) ResultType() string { return typeName[Sequence[E]]() }

func (o *Order[E]) Source() Expression[Sequence[E]] { return o.source }
func (o *Order[E]) Criterion() *OrderCriterion[E] { return o.criterion }
func (o *Order[E]) Input() Node { return o.source }
func (o *Order[E]) SortKeys() []SortKey { return o.criterion.Keys() }

func (o *Order[E]) WithInput(input Node) (Node, error) {
	if same(input, o.source) {
		return o, nil
	}
	source, err := expect[Sequence[E]](KindOrder, "source", input)
	if err != nil {
		return nil, err
	}
	return NewOrder(source, o.criterion)
}

func (o *Order[E]) Accept(v Visitor, c *ambient.Context) (Node, error) {
	return v.VisitOrder(o, c)
}

func (o *Order[E]) Equal(other Node) bool {
	x, ok := other.(*Order[E])
	if !ok {
		return false
	}
	return o == x || (o.criterion.Equal(x.criterion) && o.source.Equal(x.source))
}

func (o *Order[E]) Describe() ir.IRObject {
	criterion := make(ir.IRArray, 0, len(o.criterion.keys))
	for _, k := range o.criterion.keys {
		criterion = append(criterion, k.describe())
	}
	return ir.IRObject{
		"kind":      ir.IRString(KindOrder.String()),
		"source":    o.source.Describe(),
		"criterion": criterion,
	}
}
