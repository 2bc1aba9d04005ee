package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file plus an empty-steps script next to it.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.yaml"), []byte("steps: []\n"), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_ResolvesScriptRelativeToScenario(t *testing.T) {
	path := writeScenario(t, `
name: ok
description: "loads"
script: script.yaml
remote:
  - id: blog
    fields: [title]
    has_entries: true
expect_errors: []
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "script.yaml"), s.Script)
	assert.NotNil(t, s.ExpectErrors)
	assert.Empty(t, s.ExpectErrors)

	remote := s.RemoteContentTypes()
	require.Len(t, remote, 1)
	assert.Equal(t, "blog", remote[0].Sys.ID)
	assert.True(t, remote[0].HasEntries)
	require.Len(t, remote[0].Fields, 1)
	assert.Equal(t, "title", remote[0].Fields[0].ID)
	assert.Equal(t, "Symbol", remote[0].Fields[0].Type)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown field",
			body:    "name: x\ndescription: y\nscript: script.yaml\nexpect_error: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			body:    "description: y\nscript: script.yaml\nexpect_errors: []\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			body:    "name: x\nscript: script.yaml\nexpect_errors: []\n",
			wantErr: "description is required",
		},
		{
			name:    "missing script",
			body:    "name: x\ndescription: y\nexpect_errors: []\n",
			wantErr: "script is required",
		},
		{
			name:    "script not found",
			body:    "name: x\ndescription: y\nscript: nope.cue\nexpect_errors: []\n",
			wantErr: "script file not found",
		},
		{
			name:    "missing expect_errors",
			body:    "name: x\ndescription: y\nscript: script.yaml\n",
			wantErr: "expect_errors is required",
		},
		{
			name:    "expected error without message",
			body:    "name: x\ndescription: y\nscript: script.yaml\nexpect_errors:\n  - line: 3\n",
			wantErr: "expect_errors[0]: message is required",
		},
		{
			name:    "remote without id",
			body:    "name: x\ndescription: y\nscript: script.yaml\nremote:\n  - fields: [a]\nexpect_errors: []\n",
			wantErr: "remote[0]: id is required",
		},
		{
			name:    "unknown assertion",
			body:    "name: x\ndescription: y\nscript: script.yaml\nexpect_errors: []\nassertions:\n  - type: trace_contains\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "plan_order without actions",
			body:    "name: x\ndescription: y\nscript: script.yaml\nexpect_errors: []\nassertions:\n  - type: plan_order\n",
			wantErr: "actions list is required",
		},
		{
			name:    "plan_count without action",
			body:    "name: x\ndescription: y\nscript: script.yaml\nexpect_errors: []\nassertions:\n  - type: plan_count\n    count: 1\n",
			wantErr: "action is required for plan_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
