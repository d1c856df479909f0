package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompare(t *testing.T, field string, op Operator, operand Node) *Comparison {
	t.Helper()
	c, err := NewComparison(field, op, operand)
	require.NoError(t, err)
	return c
}

func TestNewSelection_Validation(t *testing.T) {
	src := mustSource[customer](t, "customers")
	pred := mustCompare(t, "Age", OpGte, NewConstant(18))

	_, err := NewSelection[customer](nil, pred)
	var ce *ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "source", ce.Field)

	_, err = NewSelection[customer](src, nil)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "predicate", ce.Field)

	sel, err := NewSelection[customer](src, pred)
	require.NoError(t, err)
	assert.Same(t, src, sel.Source())
	assert.Same(t, pred, sel.Predicate())
}

func TestNewComparison_Validation(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		op      Operator
		operand Node
		want    string
	}{
		{"blank field", " ", OpEq, NewConstant(1), "field"},
		{"unknown op", "Age", Operator("~"), NewConstant(1), "op"},
		{"nil operand", "Age", OpEq, nil, "operand"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewComparison(tt.field, tt.op, tt.operand)
			var ce *ConstructionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Field)
		})
	}
}

func TestNewConjunction_Validation(t *testing.T) {
	_, err := NewConjunction()
	assert.True(t, IsConstructionError(err))

	_, err = NewConjunction(mustCompare(t, "Age", OpEq, NewConstant(1)), nil)
	assert.True(t, IsConstructionError(err))
}

func TestSelection_WithChildren(t *testing.T) {
	src := mustSource[customer](t, "customers")
	pred := mustCompare(t, "Age", OpGte, NewConstant(18))
	sel, err := NewSelection[customer](src, pred)
	require.NoError(t, err)

	unchanged, err := sel.WithChildren(src, pred)
	require.NoError(t, err)
	assert.Same(t, sel, unchanged)

	other := mustCompare(t, "Age", OpLt, NewConstant(65))
	rebuilt, err := sel.WithChildren(src, other)
	require.NoError(t, err)
	assert.NotSame(t, sel, rebuilt)
	assert.Same(t, other, rebuilt.(*Selection[customer]).Predicate())

	// A set-valued node is not a predicate.
	_, err = sel.WithChildren(src, src)
	assert.True(t, IsTypeMismatch(err))
}

func TestComparison_WithOperand(t *testing.T) {
	c := mustCompare(t, "Name", OpEq, NewConstant("ada"))

	unchanged, err := c.WithOperand(c.Operand())
	require.NoError(t, err)
	assert.Same(t, c, unchanged)

	rebuilt, err := c.WithOperand(NewConstant("grace"))
	require.NoError(t, err)
	assert.Equal(t, "Name", rebuilt.Field())
	assert.Equal(t, OpEq, rebuilt.Op())
	assert.False(t, c.Equal(rebuilt))
}

func TestConjunction_WithTerms(t *testing.T) {
	a := mustCompare(t, "Age", OpGte, NewConstant(18))
	b := mustCompare(t, "Name", OpNeq, NewConstant(""))
	conj, err := NewConjunction(a, b)
	require.NoError(t, err)

	unchanged, err := conj.WithTerms(conj.Terms())
	require.NoError(t, err)
	assert.Same(t, conj, unchanged)

	rebuilt, err := conj.WithTerms([]Node{a})
	require.NoError(t, err)
	assert.Len(t, rebuilt.(*Conjunction).Terms(), 1)

	_, err = conj.WithTerms([]Node{a, NewConstant(3)})
	assert.True(t, IsTypeMismatch(err))

	// A bool literal is a valid term.
	_, err = conj.WithTerms([]Node{a, NewConstant(true)})
	assert.NoError(t, err)
}

func TestPredicates_Equal(t *testing.T) {
	a1 := mustCompare(t, "Age", OpGte, NewConstant(18))
	a2 := mustCompare(t, "Age", OpGte, NewConstant(18))
	b := mustCompare(t, "Age", OpGt, NewConstant(18))

	assert.True(t, a1.Equal(a2))
	assert.False(t, a1.Equal(b))

	c1, _ := NewConjunction(a1, b)
	c2, _ := NewConjunction(a2, b)
	c3, _ := NewConjunction(b, a1)
	assert.True(t, c1.Equal(c2))
	assert.False(t, c1.Equal(c3), "term order is significant")

	s1, _ := NewSelection[customer](mustSource[customer](t, "customers"), c1)
	s2, _ := NewSelection[customer](mustSource[customer](t, "customers"), c2)
	assert.True(t, s1.Equal(s2))
}

func TestNewProjection_Validation(t *testing.T) {
	src := mustSource[customer](t, "customers")

	_, err := NewProjection[customer](nil, "Name")
	assert.True(t, IsConstructionError(err))

	_, err = NewProjection[customer](src)
	assert.True(t, IsConstructionError(err))

	_, err = NewProjection[customer](src, "Name", "")
	assert.True(t, IsConstructionError(err))

	_, err = NewProjection[customer](src, "Name", "Name")
	assert.ErrorContains(t, err, `duplicate "Name"`)

	p, err := NewProjection[customer](src, "Name", "Age")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age"}, p.Fields())
	assert.Contains(t, p.ResultType(), "IRObject")
}

func TestProjection_WithInput(t *testing.T) {
	src := mustSource[customer](t, "customers")
	p, err := NewProjection[customer](src, "Name")
	require.NoError(t, err)

	unchanged, err := p.WithInput(src)
	require.NoError(t, err)
	assert.Same(t, p, unchanged)

	sorted, err := NewOrder[customer](src, mustAsc[customer](t, "Name"))
	require.NoError(t, err)
	rebuilt, err := p.WithInput(sorted)
	require.NoError(t, err)
	assert.True(t, rebuilt.(*Projection[customer]).Source().Equal(sorted))
}
