package harness

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ctmigrate/internal/ir"
)

// PlanSnapshot captures a scenario's plan for golden comparison.
type PlanSnapshot struct {
	ScenarioName string
	PlanHash     string
	Chunks       []ir.Chunk
	Errors       []ir.ValidationError
}

// NewPlanSnapshot builds a snapshot from a result.
func NewPlanSnapshot(name string, result *Result) PlanSnapshot {
	return PlanSnapshot{
		ScenarioName: name,
		PlanHash:     result.PlanHash,
		Chunks:       result.Chunks,
		Errors:       result.Errors,
	}
}

// Canonical renders the snapshot as canonical JSON. Callsites are moved out
// of the actions into a callsites list of file:line strings.
func (s PlanSnapshot) Canonical() ([]byte, error) {
	var callsites ir.Array
	chunks := make([]ir.Chunk, len(s.Chunks))
	for i, c := range s.Chunks {
		chunks[i] = make(ir.Chunk, len(c))
		for j, a := range c {
			callsites = append(callsites, ir.String(callsiteKey(a.Callsite)))
			a.Callsite = nil
			chunks[i][j] = a
		}
	}

	errs := make([]ir.ValidationError, len(s.Errors))
	for i, e := range s.Errors {
		e.Details.Step.Callsite = nil
		errs[i] = e
	}

	if callsites == nil {
		callsites = ir.Array{}
	}
	return ir.MarshalCanonical(ir.Object{
		"scenario":  ir.String(s.ScenarioName),
		"plan_hash": ir.String(s.PlanHash),
		"chunks":    ir.ChunksValue(chunks),
		"errors":    ir.ErrorsValue(errs),
		"callsites": callsites,
	})
}

func callsiteKey(cs *ir.Callsite) string {
	if cs == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.ToSlash(cs.File), cs.Line)
}

// RunWithGolden executes a scenario and compares its plan against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie) occurs
// if the plan doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewPlanSnapshot(scenarioName, result).Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
