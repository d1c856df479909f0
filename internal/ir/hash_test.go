package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDeterminism(t *testing.T) {
	a := IRObject{"kind": IRString("source"), "name": IRString("orders")}
	b := IRObject{"name": IRString("orders"), "kind": IRString("source")}

	h1, err := Hash(DomainNode, a)
	require.NoError(t, err)
	h2, err := Hash(DomainNode, b)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "key order must not affect the hash")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestHashDomainSeparation(t *testing.T) {
	v := IRString("same")

	assert.NotEqual(t, MustHash(DomainNode, v), MustHash(DomainTrace, v))
}

func TestHashChangesWithInput(t *testing.T) {
	assert.NotEqual(t,
		MustHash(DomainNode, IRObject{"name": IRString("a")}),
		MustHash(DomainNode, IRObject{"name": IRString("b")}),
	)
}
