package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"min int64", Int(-9223372036854775808), "-9223372036854775808"},
		{"bool", Bool(false), "false"},
		{"null", Null{}, "null"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"go map", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed U+00E9.
	result, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by the text u2028 stays escaped.
	result, err = MarshalCanonical(String(`x\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	require.Error(t, err)
}

func TestMarshalCanonicalAction(t *testing.T) {
	a := Action{
		Type: FieldCreate,
		Meta: Meta{
			ContentTypeInstanceID: "contentType/person/0",
			FieldInstanceID:       "fields/name/3",
		},
		Payload: Payload{ContentTypeID: "person", FieldID: "name"},
	}

	result, err := MarshalCanonical(a)
	require.NoError(t, err)
	assert.Equal(t,
		`{"meta":{"contentTypeInstanceId":"contentType/person/0","fieldInstanceId":"fields/name/3"},"payload":{"contentTypeId":"person","fieldId":"name"},"type":"field/create"}`,
		string(result))
}

func TestMarshalCanonicalMoveWithCallsite(t *testing.T) {
	a := Action{
		Type:     FieldMove,
		Meta:     Meta{ContentTypeInstanceID: "contentType/person/1", FieldInstanceID: "fields/age/0"},
		Payload:  Payload{ContentTypeID: "person", FieldID: "age", Movement: &Movement{Direction: DirectionToTheTop}},
		Callsite: &Callsite{File: "m.cue", Line: 4},
	}

	result, err := MarshalCanonical(a)
	require.NoError(t, err)
	assert.Equal(t,
		`{"callsite":{"file":"m.cue","line":4},"meta":{"contentTypeInstanceId":"contentType/person/1","fieldInstanceId":"fields/age/0"},"payload":{"contentTypeId":"person","fieldId":"age","movement":{"direction":"toTheTop"}},"type":"field/move"}`,
		string(result))
}

func TestMarshalCanonicalValidationErrors(t *testing.T) {
	step := Action{
		Type:    FieldDelete,
		Meta:    Meta{ContentTypeInstanceID: "contentType/person/0", FieldInstanceID: "fields/name/0"},
		Payload: Payload{ContentTypeID: "person", FieldID: "name"},
	}
	errs := []ValidationError{NewInvalidAction(step, "Field with id %q cannot be deleted because it does not exist.", "name")}

	result, err := MarshalCanonical(errs)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"details":{"step":{"meta":{"contentTypeInstanceId":"contentType/person/0","fieldInstanceId":"fields/name/0"},"payload":{"contentTypeId":"person","fieldId":"name"},"type":"field/delete"}},"message":"Field with id \"name\" cannot be deleted because it does not exist.","type":"InvalidAction"}]`,
		string(result))
}
