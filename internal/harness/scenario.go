package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ctmigrate/internal/ir"
)

// Scenario defines one end-to-end migration check.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the CUE or YAML migration script to record. Relative paths
	// are resolved against the scenario file's directory.
	Script string `yaml:"script"`

	// Remote is the baseline of content types that already exist.
	Remote []RemoteType `yaml:"remote,omitempty"`

	// ExpectErrors lists the validation errors the plan must produce, in
	// order. An empty list asserts the plan is valid.
	ExpectErrors []ExpectedError `yaml:"expect_errors"`

	// Assertions check the shape of the recorded plan.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// RemoteType is a compact remote content type.
type RemoteType struct {
	ID         string   `yaml:"id"`
	Fields     []string `yaml:"fields,omitempty"`
	HasEntries bool     `yaml:"has_entries,omitempty"`
}

// ExpectedError matches one validation error. Empty fields are not compared.
type ExpectedError struct {
	Message               string `yaml:"message"`
	Action                string `yaml:"action,omitempty"`
	ContentTypeInstanceID string `yaml:"content_type_instance_id,omitempty"`
	FieldInstanceID       string `yaml:"field_instance_id,omitempty"`
	Line                  int    `yaml:"line,omitempty"`
}

// Assertion checks the recorded plan.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is an action type (used by plan_contains and plan_count).
	Action string `yaml:"action,omitempty"`

	// ContentType and Field narrow plan_contains to one target.
	ContentType string `yaml:"content_type,omitempty"`
	Field       string `yaml:"field,omitempty"`

	// Count is the expected number (used by plan_count and chunk_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected order (used by plan_order).
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertPlanContains = "plan_contains"
	AssertPlanOrder    = "plan_order"
	AssertPlanCount    = "plan_count"
	AssertChunkCount   = "chunk_count"
)

// RemoteContentTypes converts the scenario baseline. Remote fields are
// Symbol fields.
func (s *Scenario) RemoteContentTypes() []ir.RemoteContentType {
	out := make([]ir.RemoteContentType, 0, len(s.Remote))
	for _, r := range s.Remote {
		ct := ir.RemoteContentType{
			Sys:        ir.Sys{ID: r.ID},
			Name:       r.ID,
			Fields:     make([]ir.RemoteField, 0, len(r.Fields)),
			HasEntries: r.HasEntries,
		}
		for _, f := range r.Fields {
			ct.Fields = append(ct.Fields, ir.RemoteField{ID: f, Name: f, Type: "Symbol"})
		}
		out = append(out, ct)
	}
	return out
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expect_error:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Script != "" && !filepath.IsAbs(scenario.Script) {
		scenario.Script = filepath.Join(filepath.Dir(path), scenario.Script)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Script == "" {
		return fmt.Errorf("script is required")
	}
	if _, err := os.Stat(s.Script); os.IsNotExist(err) {
		return fmt.Errorf("script file not found: %s", s.Script)
	}

	if s.ExpectErrors == nil {
		return fmt.Errorf("expect_errors is required (use [] for a valid plan)")
	}
	for i, e := range s.ExpectErrors {
		if e.Message == "" {
			return fmt.Errorf("expect_errors[%d]: message is required", i)
		}
	}

	for i, r := range s.Remote {
		if r.ID == "" {
			return fmt.Errorf("remote[%d]: id is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPlanContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for plan_contains", index)
		}
	case AssertPlanOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for plan_order", index)
		}
	case AssertPlanCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for plan_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for plan_count", index)
		}
	case AssertChunkCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for chunk_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
