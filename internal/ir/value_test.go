package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := Object{
		"a":  Int(1),
		"A":  Int(2),
		"aa": Int(3),
		"aA": Int(4),
		"Aa": Int(5),
		"AA": Int(6),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestObjectSortedKeysSupplementaryPlane(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 even though the UTF-8 bytes sort after.
	obj := Object{"\U0001F600": Int(1), "\uFF61": Int(2)}
	assert.Equal(t, []string{"\U0001F600", "\uFF61"}, obj.SortedKeys())
}

func TestObjectClone(t *testing.T) {
	orig := Object{"name": String("Person")}
	clone := orig.Clone()
	clone["name"] = String("Animal")

	assert.Equal(t, String("Person"), orig["name"])
	assert.Nil(t, Object(nil).Clone())
}

func TestObjectJSONRoundTrip(t *testing.T) {
	obj := Object{
		"required":    Bool(true),
		"type":        String("Symbol"),
		"validations": Array{Object{"size": Object{"max": Int(10)}}},
		"default":     Null{},
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"default":null,"required":true,"type":"Symbol","validations":[{"size":{"max":10}}]}`, string(data))

	var decoded Object
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, obj, decoded)
}

func TestObjectUnmarshalRejectsFloats(t *testing.T) {
	var obj Object
	err := json.Unmarshal([]byte(`{"range":{"min":1.5}}`), &obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are not allowed")
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte(`{"in":["a","b"],"n":3}`))
	require.NoError(t, err)
	assert.Equal(t, Object{"in": Array{String("a"), String("b")}, "n": Int(3)}, v)

	_, err = ParseValue([]byte(`2.5`))
	require.Error(t, err)
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"nil", nil, Null{}},
		{"string", "x", String("x")},
		{"int", 7, Int(7)},
		{"uint64", uint64(9), Int(9)},
		{"bool", false, Bool(false)},
		{"slice", []any{"a", 1}, Array{String("a"), Int(1)}},
		{"map", map[string]any{"k": true}, Object{"k": Bool(true)}},
		{"value passthrough", String("y"), String("y")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGoRejectsFloats(t *testing.T) {
	_, err := FromGo(map[string]any{"ratio": 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `["ratio"]`)
}

func TestObjectFromGoNil(t *testing.T) {
	obj, err := ObjectFromGo(nil)
	require.NoError(t, err)
	assert.Nil(t, obj)
}
