package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ctmigrate/internal/ir"
)

// yamlFile is the top level of a YAML script. Steps stay as nodes so their
// line numbers survive decoding.
type yamlFile struct {
	Steps []yaml.Node `yaml:"steps"`
}

// LoadYAML loads a YAML script.
func LoadYAML(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, newLoadError(ErrCodeNotFound, ir.Callsite{}, "script not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseYAML(path, data)
}

// ParseYAML parses a YAML script. Unknown keys are rejected at every level
// except inside props.
func ParseYAML(file string, data []byte) (*Script, error) {
	var doc yamlFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newLoadError(ErrCodeMissingField, ir.Callsite{File: file, Line: 1}, "steps list is required")
		}
		return nil, newLoadError(ErrCodeParseFailed, ir.Callsite{File: file}, "failed to parse YAML: %v", err)
	}
	if doc.Steps == nil {
		return nil, newLoadError(ErrCodeMissingField, ir.Callsite{File: file, Line: 1}, "steps list is required")
	}

	s := &Script{File: file}
	for i := range doc.Steps {
		st, err := parseYAMLStep(file, &doc.Steps[i])
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

func yamlPos(file string, n *yaml.Node) ir.Callsite {
	return ir.Callsite{File: file, Line: n.Line, Column: n.Column}
}

func parseYAMLStep(file string, n *yaml.Node) (Step, error) {
	st := Step{Pos: yamlPos(file, n)}
	if n.Kind != yaml.MappingNode {
		return Step{}, newLoadError(ErrCodeInvalidValue, st.Pos, "step must be a mapping")
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		key := keyNode.Value
		pos := yamlPos(file, valNode)

		if !knownKeys[key] {
			return Step{}, newLoadError(ErrCodeUnknownField, yamlPos(file, keyNode), "unknown step field %q", key)
		}

		if key == keyProps {
			if valNode.ShortTag() == "!!null" {
				continue
			}
			props, err := yamlProps(pos, valNode)
			if err != nil {
				return Step{}, err
			}
			st.Props = props
			continue
		}

		if valNode.Kind != yaml.ScalarNode || valNode.ShortTag() != "!!str" {
			return Step{}, newLoadError(ErrCodeInvalidValue, pos, "%s must be a string", key)
		}
		switch key {
		case keyOp:
			st.Op = valNode.Value
		case keyContentType:
			st.ContentType = valNode.Value
		case keyID:
			st.ID = valNode.Value
		case keyNewID:
			st.NewID = valNode.Value
		case keyDirection:
			st.Direction = valNode.Value
		case keyPivot:
			st.Pivot = valNode.Value
		}
	}
	return st, nil
}

func yamlProps(pos ir.Callsite, n *yaml.Node) (ir.Object, error) {
	if n.Kind != yaml.MappingNode {
		return nil, newLoadError(ErrCodeInvalidValue, pos, "%s must be a mapping", keyProps)
	}

	var raw map[string]any
	if err := n.Decode(&raw); err != nil {
		return nil, newLoadError(ErrCodeInvalidValue, pos, "%s: %v", keyProps, err)
	}
	obj, err := ir.ObjectFromGo(raw)
	if err != nil {
		return nil, newLoadError(ErrCodeInvalidValue, pos, "%s: %v", keyProps, err)
	}
	if obj == nil {
		obj = ir.Object{}
	}
	return obj, nil
}
