package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() ActionLog {
	return ActionLog{
		{
			Type:    ContentTypeCreate,
			Meta:    Meta{ContentTypeInstanceID: ContentTypeInstanceID("person", 0)},
			Payload: Payload{ContentTypeID: "person"},
		},
		{
			Type:    FieldCreate,
			Meta:    Meta{ContentTypeInstanceID: ContentTypeInstanceID("person", 0), FieldInstanceID: FieldInstanceID("name", 0)},
			Payload: Payload{ContentTypeID: "person", FieldID: "name"},
		},
	}
}

func TestPlanHashDeterministic(t *testing.T) {
	h1, err := PlanHash(samplePlan())
	require.NoError(t, err)
	h2, err := PlanHash(samplePlan())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestPlanHashIgnoresCallsites(t *testing.T) {
	plan := samplePlan()
	withSites := samplePlan()
	withSites[0].Callsite = &Callsite{File: "a.cue", Line: 1}
	withSites[1].Callsite = &Callsite{File: "a.cue", Line: 2}

	assert.Equal(t, MustPlanHash(plan), MustPlanHash(withSites))
	assert.NotNil(t, withSites[0].Callsite, "input must not be mutated")
}

func TestPlanHashOrderSensitive(t *testing.T) {
	plan := samplePlan()
	reversed := ActionLog{plan[1], plan[0]}

	assert.NotEqual(t, MustPlanHash(plan), MustPlanHash(reversed))
}

func TestActionIDDependsOnSeq(t *testing.T) {
	plan := samplePlan()
	h := MustPlanHash(plan)

	id1, err := ActionID(h, 1, plan[0])
	require.NoError(t, err)
	id2, err := ActionID(h, 2, plan[0])
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}
