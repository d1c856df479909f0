package expr

import (
	"errors"
	"fmt"
)

// ConstructionError reports a node that could not be built.
// Trees are validated when they are built, never when they are visited.
type ConstructionError struct {
	Node   string // variant being built, e.g. "order"
	Field  string // offending field, e.g. "criterion"
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Node, e.Field, e.Reason)
}

// TypeMismatchError reports a child whose result type does not fit the slot
// it was given to.
type TypeMismatchError struct {
	Node  string
	Field string
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("invalid %s: %s must denote %s, got %s", e.Node, e.Field, e.Want, e.Got)
}

// IsConstructionError reports whether err is, or wraps, a ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}

// IsTypeMismatch reports whether err is, or wraps, a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var te *TypeMismatchError
	return errors.As(err, &te)
}

func missing(node Kind, field string) *ConstructionError {
	return &ConstructionError{Node: node.String(), Field: field, Reason: "is required"}
}

func invalid(node Kind, field, format string, args ...any) *ConstructionError {
	return &ConstructionError{Node: node.String(), Field: field, Reason: fmt.Sprintf(format, args...)}
}

// expect asserts that n denotes R, for rebuilders that take erased children.
func expect[R any](node Kind, field string, n Node) (Expression[R], error) {
	if n == nil {
		return nil, missing(node, field)
	}
	typed, ok := n.(Expression[R])
	if !ok {
		return nil, &TypeMismatchError{
			Node:  node.String(),
			Field: field,
			Want:  typeName[R](),
			Got:   n.ResultType(),
		}
	}
	return typed, nil
}
