package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qnorm/internal/expr"
)

func TestProvider_RecordsCalls(t *testing.T) {
	p := NewProvider("remote").Returns(expr.Sequence[string]{"a"})
	src, err := expr.NewSource[string]("names")
	require.NoError(t, err)

	out, err := p.Execute(src)
	require.NoError(t, err)
	assert.Equal(t, expr.Sequence[string]{"a"}, out)
	assert.Equal(t, "remote", p.Name())

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.Same(t, src, calls[0])

	p.Reset()
	assert.Empty(t, p.Calls())
}

func TestProvider_Fails(t *testing.T) {
	boom := errors.New("offline")
	p := NewProvider("remote").Fails(boom)

	_, err := p.Execute(expr.NewConstant(1))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, p.Calls(), 1)
}
