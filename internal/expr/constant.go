package expr

import (
	"fmt"
	"reflect"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/ir"
)

// ConstantNode is the erased view of Constant[R].
type ConstantNode interface {
	Node

	// Value returns the wrapped value: an R for literals, or whatever was
	// passed to Wrap.
	Value() any

	// IsLiteral reports whether Value is an R.
	IsLiteral() bool

	// Rebind returns a constant of the same result type holding v.
	// It fails with a *TypeMismatchError when v is not an R.
	Rebind(v any) (Node, error)
}

// Describer is implemented by constant payloads that know how to describe
// themselves, such as deferred queries.
type Describer interface {
	Describe() ir.IRObject
}

// Constant embeds a value in the tree.
type Constant[R any] struct {
	value   any
	literal bool
}

// NewConstant returns a literal constant holding v.
func NewConstant[R any](v R) *Constant[R] {
	return &Constant[R]{value: v, literal: true}
}

// Wrap returns a constant holding v, a value that yields an R only once it
// is resolved (for example a deferred query producing Sequence[E]).
func Wrap[R any](v any) (*Constant[R], error) {
	if v == nil {
		return nil, missing(KindConstant, "value")
	}
	if r, ok := v.(R); ok {
		return NewConstant(r), nil
	}
	return &Constant[R]{value: v}, nil
}

func (*Constant[R]) Kind() Kind { return KindConstant }
func (*Constant[R]) denotes(R) {}
func (*Constant[R]) ResultType() string { return typeName[R]() }

func (c *Constant[R]) Value() any { return c.value }
func (c *Constant[R]) IsLiteral() bool { return c.literal }

// Literal returns the wrapped R when the constant is a literal.
func (c *Constant[R]) Literal() (R, bool) {
	if !c.literal {
		var zero R
		return zero, false
	}
	r, _ := c.value.(R)
	return r, true
}

func (c *Constant[R]) Rebind(v any) (Node, error) {
	r, ok := v.(R)
	if !ok && v != nil {
		return nil, &TypeMismatchError{
			Node:  KindConstant.String(),
			Field: "value",
			Want:  typeName[R](),
			Got:   fmt.Sprintf("%T", v),
		}
	}
	if !ok {
		// nil is only an R when R admits nil; r is then its zero value.
		if !nilable[R]() {
			return nil, &TypeMismatchError{
				Node:  KindConstant.String(),
				Field: "value",
				Want:  typeName[R](),
				Got:   "nil",
			}
		}
	}
	return NewConstant(r), nil
}

func (c *Constant[R]) Accept(v Visitor, ctx *ambient.Context) (Node, error) {
	return v.VisitConstant(c, ctx)
}

func (c *Constant[R]) Equal(other Node) bool {
	o, ok := other.(*Constant[R])
	if !ok {
		return false
	}
	if c == o {
		return true
	}
	return c.literal == o.literal && reflect.DeepEqual(c.value, o.value)
}

func (c *Constant[R]) Describe() ir.IRObject {
	return ir.IRObject{
		"kind":  ir.IRString(KindConstant.String()),
		"value": describeValue(c.value),
	}
}

func (c *Constant[R]) String() string {
	return fmt.Sprintf("Constant[%s](%v)", c.ResultType(), c.value)
}

// describeValue renders a payload, falling back to its %v form.
func describeValue(v any) ir.IRValue {
	if d, ok := v.(Describer); ok {
		return d.Describe()
	}
	if seq, ok := v.(interface{ Items() []any }); ok {
		v = seq.Items()
	}
	if converted, err := ir.FromGo(v); err == nil {
		return converted
	}
	return ir.IRString(fmt.Sprintf("%v", v))
}

// nilable reports whether the zero value of R is nil.
func nilable[R any]() bool {
	var zero R
	switch reflect.TypeOf(&zero).Elem().Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	}
	return false
}
