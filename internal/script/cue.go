package script

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/ctmigrate/internal/ir"
)

// cueListField is the top-level field holding the steps of a CUE script.
const cueListField = "migration"

// LoadCUE loads a CUE script from a file, or from every .cue file of a
// directory as one package.
func LoadCUE(path string) (*Script, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, newLoadError(ErrCodeNotFound, ir.Callsite{}, "script not found: %s", path)
	}
	if err != nil {
		return nil, newLoadError(ErrCodeNotFound, ir.Callsite{}, "error accessing script: %v", err)
	}

	ctx := cuecontext.New()
	var value cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, newLoadError(ErrCodeBuildFailed, ir.Callsite{}, "no CUE instances loaded from %s", path)
		}
		if inst := instances[0]; inst.Err != nil {
			return nil, formatCUEError(ErrCodeParseFailed, inst.Err)
		}
		value = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
		value = ctx.CompileBytes(data, cue.Filename(path))
	}
	if err := value.Err(); err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}

	return CompileCUE(path, value)
}

// CompileCUE extracts the steps of a built CUE value.
func CompileCUE(file string, value cue.Value) (*Script, error) {
	list := value.LookupPath(cue.ParsePath(cueListField))
	if !list.Exists() {
		return nil, newLoadError(ErrCodeMissingField, callsiteFromCUE(value.Pos()), "%s list is required", cueListField)
	}

	iter, err := list.List()
	if err != nil {
		return nil, formatCUEError(ErrCodeInvalidValue, err)
	}

	s := &Script{File: file}
	for iter.Next() {
		st, err := compileCUEStep(iter.Value())
		if err != nil {
			return nil, err
		}
		if err := checkStep(st); err != nil {
			return nil, err
		}
		s.Steps = append(s.Steps, st)
	}
	return s, nil
}

func compileCUEStep(v cue.Value) (Step, error) {
	st := Step{Pos: callsiteFromCUE(v.Pos())}

	fields, err := v.Fields()
	if err != nil {
		return Step{}, newLoadError(ErrCodeInvalidValue, st.Pos, "step must be a struct")
	}

	for fields.Next() {
		key := fields.Label()
		fv := fields.Value()
		pos := callsiteFromCUE(fv.Pos())

		if !knownKeys[key] {
			return Step{}, newLoadError(ErrCodeUnknownField, pos, "unknown step field %q", key)
		}

		if key == keyProps {
			props, err := cueValue(fv)
			if err != nil {
				return Step{}, err
			}
			obj, ok := props.(ir.Object)
			if !ok {
				return Step{}, newLoadError(ErrCodeInvalidValue, pos, "%s must be a struct", keyProps)
			}
			st.Props = obj
			continue
		}

		str, err := fv.String()
		if err != nil {
			return Step{}, newLoadError(ErrCodeInvalidValue, pos, "%s must be a string", key)
		}
		switch key {
		case keyOp:
			st.Op = str
		case keyContentType:
			st.ContentType = str
		case keyID:
			st.ID = str
		case keyNewID:
			st.NewID = str
		case keyDirection:
			st.Direction = str
		case keyPivot:
			st.Pivot = str
		}
	}
	return st, nil
}

// cueValue converts a concrete CUE value. Floats are rejected.
func cueValue(v cue.Value) (ir.Value, error) {
	pos := callsiteFromCUE(v.Pos())

	switch v.IncompleteKind() {
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(ErrCodeInvalidValue, err)
		}
		return ir.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(ErrCodeInvalidValue, err)
		}
		return ir.Int(n), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(ErrCodeInvalidValue, err)
		}
		return ir.String(s), nil
	case cue.FloatKind, cue.NumberKind:
		return nil, newLoadError(ErrCodeInvalidValue, pos, "floats are not allowed")
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(ErrCodeInvalidValue, err)
		}
		arr := ir.Array{}
		for iter.Next() {
			item, err := cueValue(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, item)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(ErrCodeInvalidValue, err)
		}
		obj := ir.Object{}
		for iter.Next() {
			item, err := cueValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Label()] = item
		}
		return obj, nil
	default:
		return nil, newLoadError(ErrCodeInvalidValue, pos, "value must be concrete, got %s", v.IncompleteKind())
	}
}
