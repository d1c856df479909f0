// Package ambient carries typed state down a normalization pass.
//
// A Context maps a capability type to at most one value. It is never mutated:
// With returns a new Context that shadows any earlier binding of the same
// type, so a rule can extend the context for its own recursive calls without
// affecting its siblings. The nil *Context is the empty context.
//
// Lookups are keyed by the static type argument, not by the dynamic type of
// the stored value:
//
//	c := ambient.With[normalize.Provider](nil, provider)
//	p, ok := ambient.TryGet[normalize.Provider](c)
package ambient

import (
	"fmt"
	"strings"
)

// key is the map key for capability T. Distinct type arguments produce
// distinct comparable keys, so no reflection is needed to tell them apart.
type key[T any] struct{}

// Context is an immutable chain of capability bindings.
type Context struct {
	parent *Context
	key    any
	value  any
	name   string
}

// With returns a context where T is bound to value.
func With[T any](c *Context, value T) *Context {
	return &Context{
		parent: c,
		key:    key[T]{},
		value:  value,
		name:   CapabilityName[T](),
	}
}

// TryGet returns the innermost value bound to T.
// Absence is reported through ok, never through a panic.
func TryGet[T any](c *Context) (value T, ok bool) {
	k := key[T]{}
	for cur := c; cur != nil; cur = cur.parent {
		if cur.key == k {
			// A nil interface value was bound; the zero T is the answer.
			value, _ = cur.value.(T)
			return value, true
		}
	}
	return value, false
}

// Require returns the value bound to T or a *MissingStateError naming T.
func Require[T any](c *Context) (T, error) {
	v, ok := TryGet[T](c)
	if !ok {
		return v, &MissingStateError{Capability: CapabilityName[T]()}
	}
	return v, nil
}

// Capabilities lists the bound capability names, innermost first.
// Shadowed bindings are reported once.
func (c *Context) Capabilities() []string {
	var names []string
	seen := make(map[any]bool)
	for cur := c; cur != nil; cur = cur.parent {
		if seen[cur.key] {
			continue
		}
		seen[cur.key] = true
		names = append(names, cur.name)
	}
	return names
}

// CapabilityName returns the printable name of capability T.
func CapabilityName[T any]() string {
	// Format a typed nil pointer so interface types print their own name.
	return strings.TrimPrefix(fmt.Sprintf("%T", (*T)(nil)), "*")
}

// MissingStateError reports a capability a rule needed but the context lacked.
type MissingStateError struct {
	Capability string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("missing ambient state: %s", e.Capability)
}
