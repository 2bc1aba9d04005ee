// Package harness runs migration scenarios end to end.
//
// A scenario names a migration script, an optional remote baseline and the
// validation errors the plan must produce. Running it records the script,
// partitions the log, validates it, round-trips the plan through an
// in-memory store and checks the outcome.
//
// # Scenario Format
//
//	name: rename_field
//	description: "Editing a renamed field is rejected"
//	script: scripts/rename_field.yaml
//	remote:
//	  - id: blog
//	    fields: [title, slug]
//	expect_errors:
//	  - message: 'Field with id "title" cannot be edited because it has already been deleted.'
//	    action: field/update
//	    field_instance_id: fields/title/1
//	assertions:
//	  - type: chunk_count
//	    count: 1
//	  - type: plan_order
//	    actions: [field/rename, field/move]
//
// The script path is relative to the scenario file. An empty expect_errors
// list asserts the plan is valid.
//
// # Assertion Types
//
//   - plan_contains: an action of the given type, optionally on a content type or field
//   - plan_order: action types appear in the given order
//   - plan_count: an action type appears exactly N times
//   - chunk_count: the plan partitions into exactly N chunks
//
// # Golden Files
//
// RunWithGolden snapshots the plan and its errors as canonical JSON under
// testdata/golden. Callsites are listed separately as file:line so that
// snapshots do not depend on column positions.
package harness
