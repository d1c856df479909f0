package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qnorm/internal/ir"
)

type pending struct {
	label string
}

func (p pending) Describe() ir.IRObject {
	return ir.IRObject{"pending": ir.IRString(p.label)}
}

func TestNewConstant_Literal(t *testing.T) {
	c := NewConstant(42)

	assert.Equal(t, KindConstant, c.Kind())
	assert.True(t, c.IsLiteral())
	assert.Equal(t, 42, c.Value())
	assert.Equal(t, "int", c.ResultType())

	v, ok := c.Literal()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestWrap(t *testing.T) {
	c, err := Wrap[Sequence[customer]](pending{label: "later"})
	require.NoError(t, err)

	assert.False(t, c.IsLiteral())
	_, ok := c.Literal()
	assert.False(t, ok)
	assert.Equal(t, pending{label: "later"}, c.Value())
}

func TestWrap_AnRIsALiteral(t *testing.T) {
	c, err := Wrap[int](7)
	require.NoError(t, err)
	assert.True(t, c.IsLiteral())
}

func TestWrap_Nil(t *testing.T) {
	_, err := Wrap[int](nil)
	assert.True(t, IsConstructionError(err))
}

func TestConstant_RebindKeepsResultType(t *testing.T) {
	c, err := Wrap[Sequence[customer]](pending{label: "later"})
	require.NoError(t, err)

	rows := Sequence[customer]{{Name: "ada", Age: 36}}
	rebound, err := c.Rebind(rows)
	require.NoError(t, err)

	typed, ok := rebound.(*Constant[Sequence[customer]])
	require.True(t, ok)
	got, ok := typed.Literal()
	require.True(t, ok)
	assert.Equal(t, rows, got)

	// The original is untouched.
	assert.Equal(t, pending{label: "later"}, c.Value())
}

func TestConstant_RebindTypeMismatch(t *testing.T) {
	c := NewConstant("text")

	_, err := c.Rebind(3)
	require.Error(t, err)
	assert.True(t, IsTypeMismatch(err))
	assert.Contains(t, err.Error(), "must denote string, got int")
}

func TestConstant_RebindNil(t *testing.T) {
	_, err := NewConstant(1).Rebind(nil)
	assert.True(t, IsTypeMismatch(err))

	rebound, err := NewConstant(Sequence[customer]{}).Rebind(nil)
	require.NoError(t, err)
	v, ok := rebound.(*Constant[Sequence[customer]]).Literal()
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestConstant_EqualIsStructural(t *testing.T) {
	assert.True(t, NewConstant(Sequence[int]{1, 2}).Equal(NewConstant(Sequence[int]{1, 2})))
	assert.False(t, NewConstant(Sequence[int]{1, 2}).Equal(NewConstant(Sequence[int]{2, 1})))

	// Same value, different declared type.
	assert.False(t, NewConstant(int64(1)).Equal(NewConstant(1)))
}

func TestConstant_Describe(t *testing.T) {
	assert.Equal(t, ir.IRObject{
		"kind":  ir.IRString("constant"),
		"value": ir.IRInt(5),
	}, NewConstant(5).Describe())

	wrapped, err := Wrap[int](pending{label: "p"})
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{"pending": ir.IRString("p")}, wrapped.Describe()["value"])

	// Values outside the IR fall back to their printed form.
	assert.Equal(t, ir.IRString("2.5"), NewConstant(2.5).Describe()["value"])
}
