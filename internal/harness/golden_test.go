package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctmigrate/internal/ir"
)

func TestRunWithGolden_RenameField(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "rename_field.yaml"))
	require.NoError(t, err)

	// To regenerate:
	//   go test ./internal/harness -run TestRunWithGolden_RenameField -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures)
}

func TestRunWithGolden_DeleteWithEntries(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "delete_with_entries.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures)
}

func TestPlanSnapshot_CanonicalStripsCallsites(t *testing.T) {
	a := ir.Action{
		Type:     ir.ContentTypeCreate,
		Meta:     ir.Meta{ContentTypeInstanceID: "contentType/person/0"},
		Payload:  ir.Payload{ContentTypeID: "person"},
		Callsite: &ir.Callsite{File: "migrations/01.yaml", Line: 3, Column: 5},
	}
	result := NewResult()
	result.PlanHash = ir.MustPlanHash(ir.ActionLog{a})
	result.Chunks = []ir.Chunk{{a}}
	result.Errors = []ir.ValidationError{ir.NewInvalidAction(a, "boom %s", "person")}

	data, err := NewPlanSnapshot("strip", result).Canonical()
	require.NoError(t, err)

	s := string(data)
	assert.Equal(t, 1, strings.Count(s, "migrations/01.yaml"), "callsite should appear only in the callsites list")
	assert.Contains(t, s, `"callsites":["migrations/01.yaml:3"]`)
	assert.NotContains(t, s, `"callsite":`)

	// The snapshot must not mutate the result it was built from.
	require.NotNil(t, result.Chunks[0][0].Callsite)
	require.NotNil(t, result.Errors[0].Details.Step.Callsite)
}

func TestPlanSnapshot_CanonicalEmptyPlan(t *testing.T) {
	data, err := NewPlanSnapshot("empty", NewResult()).Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"callsites":[],"chunks":[],"errors":[],"plan_hash":"","scenario":"empty"}`, string(data))
}

func TestPlanSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "rename_field.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := NewPlanSnapshot(scenario.Name, first).Canonical()
	require.NoError(t, err)
	b, err := NewPlanSnapshot(scenario.Name, second).Canonical()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
