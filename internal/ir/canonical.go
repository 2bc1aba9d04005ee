package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON. It is the only
// serialization used for plan hashes and golden files.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Floats are an error
//
// Accepts Values, Go primitives, []any, map[string]any, Action, ActionLog,
// Chunk and ValidationError.
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case Action:
		return marshalCanonicalValue(val.Object())
	case ActionLog:
		return marshalCanonicalValue(logObject(val))
	case Chunk:
		return marshalCanonicalValue(logObject(ActionLog(val)))
	case []Chunk:
		return marshalCanonicalValue(ChunksValue(val))
	case ValidationError:
		return marshalCanonicalValue(val.Object())
	case []ValidationError:
		return marshalCanonicalValue(ErrorsValue(val))
	}

	iv, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	return marshalCanonicalValue(iv)
}

func marshalCanonicalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return marshalCanonicalString(string(val))
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Array:
		return marshalCanonicalArray(val)
	case Object:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString escapes only quote, backslash and control
// characters. U+2028 and U+2029 stay literal.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(out), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. An escape preceded by an odd
// run of backslashes is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			run := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

func marshalCanonicalArray(arr Array) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonicalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonicalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Object converts the action to its wire form as a Value tree.
func (a Action) Object() Object {
	meta := Object{"contentTypeInstanceId": String(a.Meta.ContentTypeInstanceID)}
	if a.Meta.FieldInstanceID != "" {
		meta["fieldInstanceId"] = String(a.Meta.FieldInstanceID)
	}

	payload := Object{"contentTypeId": String(a.Payload.ContentTypeID)}
	if a.Payload.FieldID != "" {
		payload["fieldId"] = String(a.Payload.FieldID)
	}
	if len(a.Payload.Props) > 0 {
		payload["props"] = a.Payload.Props
	}
	if m := a.Payload.Movement; m != nil {
		mv := Object{"direction": String(m.Direction)}
		if m.Pivot != "" {
			mv["pivot"] = String(m.Pivot)
		}
		payload["movement"] = mv
	}

	obj := Object{
		"type":    String(a.Type),
		"meta":    meta,
		"payload": payload,
	}
	if cs := a.Callsite; cs != nil {
		site := Object{"file": String(cs.File), "line": Int(cs.Line)}
		if cs.Column > 0 {
			site["column"] = Int(cs.Column)
		}
		obj["callsite"] = site
	}
	return obj
}

// Object converts the error to its wire form as a Value tree.
func (e ValidationError) Object() Object {
	return Object{
		"type":    String(e.Type),
		"message": String(e.Message),
		"details": Object{"step": e.Details.Step.Object()},
	}
}

func logObject(log ActionLog) Array {
	arr := make(Array, len(log))
	for i, a := range log {
		arr[i] = a.Object()
	}
	return arr
}

// ChunksValue converts chunks to a nested Array.
func ChunksValue(chunks []Chunk) Array {
	arr := make(Array, len(chunks))
	for i, c := range chunks {
		arr[i] = logObject(ActionLog(c))
	}
	return arr
}

// ErrorsValue converts validation errors to an Array.
func ErrorsValue(errs []ValidationError) Array {
	arr := make(Array, len(errs))
	for i, e := range errs {
		arr[i] = e.Object()
	}
	return arr
}
