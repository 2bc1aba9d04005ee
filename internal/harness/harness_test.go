package harness

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "failures: %v", result.Failures)
			assert.NotEmpty(t, result.PlanHash)
		})
	}
}

func TestRun_PersonAnimal(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "person_animal.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "failures: %v", result.Failures)

	require.Len(t, result.Errors, 1)
	step := result.Errors[0].Details.Step
	assert.Equal(t, "fields/name/3", step.Meta.FieldInstanceID)
	require.NotNil(t, step.Callsite)
	assert.Equal(t, 9, step.Callsite.Line)
}

func TestRun_UnexpectedErrorsFail(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "rename_field.yaml"))
	require.NoError(t, err)
	scenario.ExpectErrors = []ExpectedError{}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Failures)
	assert.Contains(t, result.Failures[0], "expected 0 validation errors, got 1")
}

func TestRun_MismatchedExpectationFails(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "delete_with_entries.yaml"))
	require.NoError(t, err)
	scenario.ExpectErrors[0].Line = 4
	scenario.ExpectErrors[0].Action = "contentType/create"

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Failures, 2)
}

func TestRun_BrokenScriptIsError(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(script, []byte("steps:\n  - op: explodeContentType\n    id: x\n"), 0o644))

	_, err := Run(&Scenario{
		Name:         "broken",
		Description:  "unknown op",
		Script:       script,
		ExpectErrors: []ExpectedError{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario broken")
}

func TestRun_WithLogger(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "delete_with_entries.yaml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err = Run(scenario, WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "scenario planned")
	assert.Contains(t, buf.String(), "scenario=delete_with_entries")
}
