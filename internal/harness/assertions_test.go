package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctmigrate/internal/ir"
)

// ============================================================================
// Fixtures
// ============================================================================

func testPlan() *Result {
	person := "contentType/person/0"
	r := NewResult()
	r.Chunks = []ir.Chunk{
		{
			{Type: ir.ContentTypeCreate, Meta: ir.Meta{ContentTypeInstanceID: person}, Payload: ir.Payload{ContentTypeID: "person"}},
			{Type: ir.FieldCreate, Meta: ir.Meta{ContentTypeInstanceID: person, FieldInstanceID: "fields/name/0"}, Payload: ir.Payload{ContentTypeID: "person", FieldID: "name"}},
		},
		{
			{Type: ir.FieldDelete, Meta: ir.Meta{ContentTypeInstanceID: "contentType/animal/0", FieldInstanceID: "fields/legs/0"}, Payload: ir.Payload{ContentTypeID: "animal", FieldID: "legs"}},
			{Type: ir.FieldCreate, Meta: ir.Meta{ContentTypeInstanceID: "contentType/animal/0", FieldInstanceID: "fields/tail/0"}, Payload: ir.Payload{ContentTypeID: "animal", FieldID: "tail"}},
		},
	}
	return r
}

// ============================================================================
// plan_contains
// ============================================================================

func TestAssertPlanContains(t *testing.T) {
	plan := testPlan().Actions()

	assert.NoError(t, assertPlanContains(plan, Assertion{Action: "field/create"}))
	assert.NoError(t, assertPlanContains(plan, Assertion{Action: "field/create", ContentType: "animal", Field: "tail"}))

	err := assertPlanContains(plan, Assertion{Action: "field/create", ContentType: "animal", Field: "legs"})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertPlanContains, ae.Type)
	assert.Equal(t, "field/create on animal.legs", ae.Expected)
	assert.Contains(t, ae.Error(), "[3] field/delete contentType/animal/0 fields/legs/0")
}

// ============================================================================
// plan_order
// ============================================================================

func TestAssertPlanOrder(t *testing.T) {
	plan := testPlan().Actions()

	assert.NoError(t, assertPlanOrder(plan, Assertion{Actions: []string{"contentType/create", "field/create", "field/delete"}}))

	err := assertPlanOrder(plan, Assertion{Actions: []string{"field/delete", "field/create"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field/delete (pos 3) should be before field/create (pos 2)")

	err = assertPlanOrder(plan, Assertion{Actions: []string{"field/move"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing action: field/move")
}

// ============================================================================
// plan_count and chunk_count
// ============================================================================

func TestAssertPlanCount(t *testing.T) {
	plan := testPlan().Actions()

	assert.NoError(t, assertPlanCount(plan, Assertion{Action: "field/create", Count: 2}))
	assert.NoError(t, assertPlanCount(plan, Assertion{Action: "field/rename", Count: 0}))

	err := assertPlanCount(plan, Assertion{Action: "field/create", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 occurrences")
}

func TestAssertChunkCount(t *testing.T) {
	r := testPlan()
	assert.NoError(t, assertChunkCount(r, Assertion{Count: 2}))

	err := assertChunkCount(r, Assertion{Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 3 chunks")
}

func TestEvaluateAssertions(t *testing.T) {
	failures := EvaluateAssertions(testPlan(), []Assertion{
		{Type: AssertChunkCount, Count: 2},
		{Type: AssertPlanCount, Action: "field/delete", Count: 5},
		{Type: "bogus"},
	})
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "Assertion failed: plan_count")
	assert.Contains(t, failures[1], `unknown assertion type "bogus"`)
}

// ============================================================================
// Validation error matching
// ============================================================================

func TestMatchErrors(t *testing.T) {
	step := testPlan().Actions()[2]
	step.Callsite = &ir.Callsite{File: "m.yaml", Line: 7}
	actual := []ir.ValidationError{ir.NewInvalidAction(step, "Field with id %q cannot be deleted because it does not exist.", "legs")}

	assert.Empty(t, matchErrors(actual, []ExpectedError{{
		Message:               `Field with id "legs" cannot be deleted because it does not exist.`,
		Action:                "field/delete",
		ContentTypeInstanceID: "contentType/animal/0",
		FieldInstanceID:       "fields/legs/0",
		Line:                  7,
	}}))

	failures := matchErrors(actual, []ExpectedError{{
		Message:         "something else",
		FieldInstanceID: "fields/legs/1",
		Line:            8,
	}})
	assert.Len(t, failures, 3)

	failures = matchErrors(nil, []ExpectedError{{Message: "x"}})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "expected 1 validation errors, got 0")
}
