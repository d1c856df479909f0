package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qnorm/internal/ambient"
	"github.com/roach88/qnorm/internal/ir"
)

// recordingVisitor notes which method each node dispatched to and returns
// the node unchanged.
type recordingVisitor struct {
	calls []string
}

func (r *recordingVisitor) VisitConstant(n ConstantNode, _ *ambient.Context) (Node, error) {
	r.calls = append(r.calls, "constant")
	return n, nil
}

func (r *recordingVisitor) VisitSource(n SourceNode, _ *ambient.Context) (Node, error) {
	r.calls = append(r.calls, "source:"+n.Name())
	return n, nil
}

func (r *recordingVisitor) VisitSelection(n SelectionNode, _ *ambient.Context) (Node, error) {
	r.calls = append(r.calls, "selection")
	return n, nil
}

func (r *recordingVisitor) VisitOrder(n OrderNode, _ *ambient.Context) (Node, error) {
	r.calls = append(r.calls, "order")
	return n, nil
}

func (r *recordingVisitor) VisitProjection(n ProjectionNode, _ *ambient.Context) (Node, error) {
	r.calls = append(r.calls, "projection")
	return n, nil
}

func (r *recordingVisitor) VisitComparison(n *Comparison, _ *ambient.Context) (Node, error) {
	r.calls = append(r.calls, "comparison:"+n.Field())
	return n, nil
}

func (r *recordingVisitor) VisitConjunction(n *Conjunction, _ *ambient.Context) (Node, error) {
	r.calls = append(r.calls, "conjunction")
	return n, nil
}

func sampleTree(t *testing.T) Node {
	t.Helper()
	src := mustSource[customer](t, "customers")
	adult := mustCompare(t, "Age", OpGte, NewConstant(18))
	named := mustCompare(t, "Name", OpNeq, NewConstant(""))
	both, err := NewConjunction(adult, named)
	require.NoError(t, err)
	sel, err := NewSelection[customer](src, both)
	require.NoError(t, err)
	ord, err := NewOrder[customer](sel, mustAsc[customer](t, "Name"))
	require.NoError(t, err)
	proj, err := NewProjection[customer](ord, "Name")
	require.NoError(t, err)
	return proj
}

func TestAccept_DispatchesToOwnVariant(t *testing.T) {
	var nodes []Node
	Walk(sampleTree(t), func(n Node) bool {
		nodes = append(nodes, n)
		return true
	})

	v := &recordingVisitor{}
	for _, n := range nodes {
		out, err := n.Accept(v, nil)
		require.NoError(t, err)
		assert.Same(t, n, out)
	}

	assert.Equal(t, []string{
		"projection",
		"order",
		"selection",
		"source:customers",
		"conjunction",
		"comparison:Age",
		"constant",
		"comparison:Name",
		"constant",
	}, v.calls)
}

func TestWalk_StopsDescending(t *testing.T) {
	var kinds []Kind
	Walk(sampleTree(t), func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != KindSelection
	})

	assert.Equal(t, []Kind{KindProjection, KindOrder, KindSelection}, kinds)
}

func TestFingerprint_StructuralEquality(t *testing.T) {
	a := sampleTree(t)
	b := sampleTree(t)

	require.True(t, a.Equal(b))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	other, err := NewProjection[customer](mustSource[customer](t, "customers"), "Name")
	require.NoError(t, err)
	fo, err := Fingerprint(other)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fo)

	_, err = Fingerprint(nil)
	assert.Error(t, err)
}

func TestMarshalCanonical_Tree(t *testing.T) {
	src := mustSource[customer](t, "customers")
	ord, err := NewOrder[customer](src, mustAsc[customer](t, "Name"))
	require.NoError(t, err)

	out, err := MarshalCanonical(ord)
	require.NoError(t, err)
	assert.Equal(t,
		`{"criterion":[{"descending":false,"field":"Name"}],"kind":"order","source":{"kind":"source","name":"customers"}}`,
		string(out))
}

func TestKind_String(t *testing.T) {
	for _, k := range []Kind{
		KindConstant, KindSource, KindSelection, KindOrder,
		KindProjection, KindComparison, KindConjunction,
	} {
		assert.NotContains(t, k.String(), "kind(")
	}
	assert.Equal(t, "kind(99)", Kind(99).String())
	assert.Equal(t, ir.IRString("order"), ir.IRString(KindOrder.String()))
}
