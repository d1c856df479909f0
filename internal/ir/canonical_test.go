package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"min int64", IRInt(-9223372036854775808), "-9223372036854775808"},
		{"bool true", IRBool(true), "true"},
		{"bool false", IRBool(false), "false"},
		{"null", IRNull{}, "null"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"array of ints", IRArray{IRInt(1), IRInt(2), IRInt(3)}, "[1,2,3]"},
		{"simple object", IRObject{"a": IRInt(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra": IRInt(1),
		"alpha": IRObject{"b": IRInt(1), "a": IRInt(2)},
		"beta":  IRInt(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as the surrogate pair D83D DE00, so it sorts before
	// U+FF61 in UTF-16 but after it in UTF-8 byte order.
	obj := IRObject{
		"\U0001F600": IRInt(1),
		"\uff61":     IRInt(2),
	}

	keys := obj.SortedKeys()
	assert.Equal(t, []string{"\U0001F600", "\uff61"}, keys)
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("a<b>&c"))
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(result))
}

func TestMarshalCanonicalSeparators(t *testing.T) {
	result, err := MarshalCanonical(IRString("x\u2028y\u2029z"))
	require.NoError(t, err)
	assert.Equal(t, "\"x\u2028y\u2029z\"", string(result))

	// A literal backslash followed by the text u2028 stays escaped.
	result, err = MarshalCanonical(IRString(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(IRString(decomposed))
	require.NoError(t, err)
	b, err := MarshalCanonical(IRString(composed))
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"name":  "ada",
		"age":   36,
		"tags":  []string{"x"},
		"extra": []any{true, nil, uint8(7)},
	})
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"name":  IRString("ada"),
		"age":   IRInt(36),
		"tags":  IRArray{IRString("x")},
		"extra": IRArray{IRBool(true), IRNull{}, IRInt(7)},
	}, v)
}

func TestFromGo_Rejects(t *testing.T) {
	_, err := FromGo(1.5)
	assert.ErrorContains(t, err, "floats")

	_, err = FromGo([]any{struct{}{}})
	assert.ErrorContains(t, err, "[0]")

	_, err = FromGo(uint64(1 << 63))
	assert.ErrorContains(t, err, "out of int64 range")
}

func TestToGo(t *testing.T) {
	in := IRObject{
		"a": IRArray{IRInt(1), IRString("two")},
		"b": IRNull{},
	}
	assert.Equal(t, map[string]any{
		"a": []any{int64(1), "two"},
		"b": nil,
	}, ToGo(in))
}
